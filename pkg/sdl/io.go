package sdl

import (
	"context"
	"fmt"
	"sync"
	"time"

	mathp "github.com/golangplus/math"
	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/config"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

// IO is the input/output abstraction layer for the VM
type IO struct {
	window *sdl.Window
	scale  int

	vm     *internal.C8VM
	lock   sync.Locker // serialises machine access with the audio callback
	logger *log.Logger
	opts   config.Options
}

// NewIO returns a new I/O instance for the SDL frontend.
// lock guards every machine access; nil uses a private mutex.
func NewIO(vm *internal.C8VM, opts config.Options, logger *log.Logger, lock sync.Locker) *IO {
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &IO{
		vm:     vm,
		scale:  opts.Scale,
		lock:   lock,
		logger: logger,
		opts:   opts,
	}
}

// SetupWindow initialises and sets up the main SDL window
func (io *IO) SetupWindow(title string) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initialising SDL: %w", err)
	}

	frame := io.vm.Frame()
	width, height := frame.Width, frame.Height
	if width == internal.ScreenWidth {
		// keep VIP programs the same window size as SUPER-CHIP ones
		width, height = width*2, height*2
	}
	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width*io.scale), int32(height*io.scale), sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	io.window = window
	return nil
}

// Destroy should be called before quitting the application
func (io *IO) Destroy() {
	if io.window != nil {
		_ = io.window.Destroy()
	}
	sdl.Quit()
}

// Loop is the main application loop. It runs one frame of instructions and a
// timer tick every 60th of a second until the window closes or ctx is done.
func (io *IO) Loop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if !io.handleEvents() {
			return nil
		}

		io.lock.Lock()
		res, err := io.runFrame()
		frame := io.vm.Frame()
		io.lock.Unlock()
		if err != nil {
			return err
		}
		if err := io.draw(frame); err != nil {
			return err
		}
		if res == internal.Halted {
			io.logger.Info("Program exited")
			return nil
		}
	}
}

// runFrame executes up to one frame worth of instructions followed by a timer tick
func (io *IO) runFrame() (internal.Result, error) {
	res := internal.Executed
	for i := 0; i < io.opts.StepsPerFrame(); i++ {
		if io.opts.Trace {
			if ins, err := io.vm.CurrentInstruction(); err == nil {
				io.logger.Debug("Step",
					log.Hex("pc", io.vm.State().PC),
					log.String("instruction", ins.String()))
			}
		}
		var err error
		res, err = io.vm.Step()
		if err != nil {
			return res, fmt.Errorf("executing instruction: %w", err)
		}
		if res != internal.Executed {
			break
		}
	}
	io.vm.TickTimers()
	return res, nil
}

func (io *IO) handleEvents() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.KeyboardEvent:
			if t.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
				return false
			}
			switch t.GetType() {
			case sdl.KEYDOWN:
				io.setKeymask(t.Keysym.Scancode, true)
			case sdl.KEYUP:
				io.setKeymask(t.Keysym.Scancode, false)
			}
		case *sdl.QuitEvent:
			return false
		}
	}
	return true
}

// Draws the frame letterboxed into the current window surface
func (io *IO) draw(frame internal.Frame) error {
	surface, err := io.window.GetSurface()
	if err != nil {
		return fmt.Errorf("getting window surface: %w", err)
	}

	colors := make([]uint32, len(internal.DefaultPalette))
	for i, c := range internal.DefaultPalette {
		r, g, b, _ := c.RGBA()
		colors[i] = sdl.MapRGB(surface.Format, uint8(r>>8), uint8(g>>8), uint8(b>>8))
	}

	winW, winH := int(surface.W), int(surface.H)
	pixelSize := mathp.MaxI(1, mathp.MinI(winW/frame.Width, winH/frame.Height))
	offsetX := mathp.MaxI(0, (winW-frame.Width*pixelSize)/2)
	offsetY := mathp.MaxI(0, (winH-frame.Height*pixelSize)/2)

	if err := surface.FillRect(nil, 0); err != nil {
		return err
	}
	background := &sdl.Rect{
		X: int32(offsetX), Y: int32(offsetY),
		W: int32(frame.Width * pixelSize), H: int32(frame.Height * pixelSize),
	}
	if err := surface.FillRect(background, colors[0]); err != nil {
		return err
	}
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			idx := frame.ColorIndex(x, y)
			if idx == 0 {
				continue
			}
			rect := &sdl.Rect{
				X: int32(offsetX + x*pixelSize), Y: int32(offsetY + y*pixelSize),
				W: int32(pixelSize), H: int32(pixelSize),
			}
			if err := surface.FillRect(rect, colors[int(idx)%len(colors)]); err != nil {
				return err
			}
		}
	}
	return io.window.UpdateSurface()
}

// Maps keys from a QWERTY keyboard to the keypad used by CHIP-8
// Below we have a mapping QWERTY keyboard to the CHIP-8 keypad
// +--------+--------+--------+--------+
// | 1 -> 1 | 2 -> 2 | 3 -> 3 | 4 -> C |
// +--------+--------+--------+--------+
// | Q -> 4 | W -> 5 | E -> 6 | R -> D |
// +--------+--------+--------+--------+
// | A -> 7 | S -> 8 | D -> 9 | F -> E |
// +--------+--------+--------+--------+
// | Z -> A | X -> 0 | C -> B | V -> F |
// +--------+--------+--------+--------+
var keymap = map[sdl.Scancode]uint8{
	sdl.SCANCODE_1: 0x1, sdl.SCANCODE_2: 0x2, sdl.SCANCODE_3: 0x3, sdl.SCANCODE_4: 0xC,
	sdl.SCANCODE_Q: 0x4, sdl.SCANCODE_W: 0x5, sdl.SCANCODE_E: 0x6, sdl.SCANCODE_R: 0xD,
	sdl.SCANCODE_A: 0x7, sdl.SCANCODE_S: 0x8, sdl.SCANCODE_D: 0x9, sdl.SCANCODE_F: 0xE,
	sdl.SCANCODE_Z: 0xA, sdl.SCANCODE_X: 0x0, sdl.SCANCODE_C: 0xB, sdl.SCANCODE_V: 0xF,
}

func (io *IO) setKeymask(scancode sdl.Scancode, pressed bool) {
	code, ok := keymap[scancode]
	if !ok {
		return
	}
	io.lock.Lock()
	err := io.vm.InjectKey(code, pressed)
	io.lock.Unlock()
	if err != nil {
		io.logger.Error("Injecting key failed", log.Err(err))
	}
}
