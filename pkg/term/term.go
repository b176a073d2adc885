// Package term runs the machine inside a terminal using termbox
package term

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/config"
	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrogolib/log"
)

// terminals report key presses only, so a key counts as held for this many frames
const keyHoldFrames = 6

// colors maps display colour indexes to terminal colours
var colors = [...]termbox.Attribute{
	termbox.ColorBlue, termbox.ColorWhite, termbox.ColorRed, termbox.ColorYellow,
	termbox.ColorGreen, termbox.ColorCyan, termbox.ColorMagenta, termbox.ColorBlack,
	termbox.ColorLightBlue, termbox.ColorLightGray, termbox.ColorLightRed, termbox.ColorLightYellow,
	termbox.ColorLightGreen, termbox.ColorLightCyan, termbox.ColorLightMagenta, termbox.ColorDarkGray,
}

// keymap uses the same QWERTY layout as the SDL front end
var keymap = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Terminal is a termbox front end for the machine
type Terminal struct {
	vm     *internal.C8VM
	lock   sync.Locker
	logger *log.Logger
	opts   config.Options
	held   map[uint8]int // frames left before an emulated key release
}

// New returns a terminal front end. lock guards every machine access; nil uses a private mutex.
func New(vm *internal.C8VM, opts config.Options, logger *log.Logger, lock sync.Locker) *Terminal {
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &Terminal{
		vm:     vm,
		lock:   lock,
		logger: logger,
		opts:   opts,
		held:   make(map[uint8]int),
	}
}

// Run takes over the terminal until ESC is pressed, the program exits or ctx is done
func (t *Terminal) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initialising terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)

	events := make(chan termbox.Event)
	done := make(chan struct{})
	defer func() {
		close(done)
		termbox.Interrupt()
	}()
	go pollEvents(termbox.PollEvent, events, done)

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if ev.Type == termbox.EventError {
				return fmt.Errorf("polling terminal: %w", ev.Err)
			}
			if ev.Type == termbox.EventKey {
				if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
					return nil
				}
				t.press(ev.Ch)
			}
		case <-ticker.C:
			res, err := t.frame()
			if err != nil {
				return err
			}
			if res == internal.Halted {
				t.logger.Info("Program exited")
				return nil
			}
		}
	}
}

// pollEvents forwards terminal events until done is closed
func pollEvents(poll func() termbox.Event, events chan<- termbox.Event, done <-chan struct{}) {
	for {
		ev := poll()
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (t *Terminal) press(ch rune) {
	code, ok := keymap[ch]
	if !ok {
		return
	}
	t.held[code] = keyHoldFrames
	t.inject(code, true)
}

func (t *Terminal) inject(code uint8, pressed bool) {
	t.lock.Lock()
	err := t.vm.InjectKey(code, pressed)
	t.lock.Unlock()
	if err != nil {
		t.logger.Error("Injecting key failed", log.Err(err))
	}
}

// releaseKeys counts down held keys and releases the expired ones
func (t *Terminal) releaseKeys() {
	for code, frames := range t.held {
		if frames > 1 {
			t.held[code] = frames - 1
			continue
		}
		delete(t.held, code)
		t.inject(code, false)
	}
}

// frame runs one 60 Hz frame of the machine and redraws the terminal
func (t *Terminal) frame() (internal.Result, error) {
	t.releaseKeys()

	t.lock.Lock()
	res := internal.Executed
	var err error
	for i := 0; i < t.opts.StepsPerFrame(); i++ {
		res, err = t.vm.Step()
		if err != nil || res != internal.Executed {
			break
		}
	}
	t.vm.TickTimers()
	frame := t.vm.Frame()
	t.lock.Unlock()
	if err != nil {
		return res, fmt.Errorf("executing instruction: %w", err)
	}

	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	w, h := termbox.Size()
	render(frame, w, h, termbox.SetCell)
	return res, termbox.Flush()
}

// render draws two display rows per terminal row using the upper half block,
// cropping to the w x h cells available
func render(frame internal.Frame, w, h int, setCell func(x, y int, ch rune, fg, bg termbox.Attribute)) {
	for row := 0; row < (frame.Height+1)/2 && row < h; row++ {
		for x := 0; x < frame.Width && x < w; x++ {
			top := colorFor(frame.ColorIndex(x, row*2))
			bottom := colorFor(frame.ColorIndex(x, row*2+1))
			setCell(x, row, '▀', top, bottom)
		}
	}
}

func colorFor(index uint8) termbox.Attribute {
	return colors[int(index)%len(colors)]
}
