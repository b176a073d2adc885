package internal

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

var allVariants = []Variant{VIP, LegacySuperChip, ModernSuperChip, XOChip}

const ibmLogo = "00e0a22a600c6108d01f7009a239d01fa2487008d01f7004a257d01f7008a266d01f7008a275d01f1228" +
	"ff00ff003c003c003c003c00ff00ffff00ff0038003f003f003800ff00ff8000e000e00080008000e000e00080f800fc003e003f003b003900f800f8" +
	"030007000f00bf00fb00f300e30043e000e0008000800080008000e000e0"

func newTestVM(t *testing.T, variant Variant, rom []byte) *C8VM {
	t.Helper()
	vm, err := NewC8VM(WithSeed(1), WithLogger(log.NewTestLogger(t)))
	assert.NoError(t, err)
	assert.NoError(t, vm.Load(rom, variant))
	return vm
}

// runSteps executes n instructions, ticking the timers whenever a display wait blocks
func runSteps(t *testing.T, vm *C8VM, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		res, err := vm.Step()
		assert.NoError(t, err)
		if res == AwaitingTick {
			vm.TickTimers()
		}
	}
}

func words(w ...uint16) []byte {
	b := make([]byte, 0, 2*len(w))
	for _, v := range w {
		b = append(b, byte(v>>8), byte(v))
	}
	return b
}

func TestIBMLogo(t *testing.T) {
	rom, err := hex.DecodeString(ibmLogo)
	assert.NoError(t, err)

	// expected logical 64x32 image, six 8x15 sprites on row 8
	var expected [ScreenHeight][ScreenWidth]bool
	xs := []int{12, 21, 29, 33, 41, 49}
	for i, x := range xs {
		data := rom[0x2A+15*i : 0x2A+15*(i+1)]
		for r, b := range data {
			for c := 0; c < 8; c++ {
				if b&(0x80>>c) != 0 {
					expected[8+r][x+c] = !expected[8+r][x+c]
				}
			}
		}
	}

	for _, variant := range allVariants {
		t.Run(variant.String(), func(t *testing.T) {
			vm := newTestVM(t, variant, rom)
			runSteps(t, vm, 40)
			assert.Equal(t, uint16(0x228), vm.regs.PC)

			frame := vm.Frame()
			scale := frame.Width / ScreenWidth
			for y := 0; y < frame.Height; y++ {
				for x := 0; x < frame.Width; x++ {
					lit := frame.ColorIndex(x, y) != 0
					if lit != expected[y/scale][x/scale] {
						t.Fatalf("pixel %d,%d: expected %v", x, y, !lit)
					}
				}
			}
		})
	}
}

func TestTickTimers(t *testing.T) {
	vm := newTestVM(t, VIP, words(0x6002, 0xF015, 0xF018))
	runSteps(t, vm, 3)
	assert.Equal(t, uint8(2), vm.regs.DT)
	assert.True(t, vm.SoundActive())

	for i := 0; i < 5; i++ {
		vm.TickTimers()
	}
	assert.Equal(t, uint8(0), vm.regs.DT)
	assert.Equal(t, uint8(0), vm.regs.ST)
	assert.False(t, vm.SoundActive())
}

func TestCallReturn(t *testing.T) {
	vm := newTestVM(t, VIP, words(0x2206, 0x1202, 0x0000, 0x00EE))
	runSteps(t, vm, 1)
	assert.Equal(t, uint16(0x206), vm.regs.PC)
	assert.Equal(t, []uint16{0x202}, vm.regs.Stack.Frames())

	runSteps(t, vm, 1)
	assert.Equal(t, uint16(0x202), vm.regs.PC)
	assert.Equal(t, 0, vm.regs.Stack.Depth())
}

func TestStackOverflow(t *testing.T) {
	vm := newTestVM(t, VIP, words(0x2200))
	runSteps(t, vm, 12)

	res, err := vm.Step()
	assert.Equal(t, Faulted, res)
	var fault *StackFault
	assert.True(t, errors.As(err, &fault))
	assert.True(t, fault.Overflow)
	assert.True(t, errors.Is(err, ErrStack))
	assert.Equal(t, uint16(0x200), vm.regs.PC)
	assert.Equal(t, 12, vm.regs.Stack.Depth())
	for _, frame := range vm.regs.Stack.Frames() {
		assert.Equal(t, uint16(0x202), frame)
	}
}

func TestStackUnbounded(t *testing.T) {
	for _, variant := range []Variant{LegacySuperChip, ModernSuperChip, XOChip} {
		t.Run(variant.String(), func(t *testing.T) {
			vm := newTestVM(t, variant, words(0x2200))
			runSteps(t, vm, 1000)
			assert.Equal(t, 1000, vm.regs.Stack.Depth())
		})
	}
}

func TestReturnOnEmptyStack(t *testing.T) {
	vm := newTestVM(t, VIP, words(0x00EE))
	_, err := vm.Step()
	assert.True(t, errors.Is(err, ErrStack))
	assert.Equal(t, uint16(0x200), vm.regs.PC)
}

func TestQuirkDivergence(t *testing.T) {
	tests := []struct {
		name    string
		rom     []byte
		steps   int
		check   func(t *testing.T, vm *C8VM, variant Variant)
		results map[Variant]uint16
	}{
		{
			name:  "shift",
			rom:   words(0x6105, 0x6203, 0x8126),
			steps: 3,
			results: map[Variant]uint16{
				VIP: 1, LegacySuperChip: 2, ModernSuperChip: 2, XOChip: 1,
			},
			check: func(t *testing.T, vm *C8VM, _ Variant) {
				t.Helper()
				assert.Equal(t, uint8(1), vm.regs.V[0xF])
			},
		},
		{
			name:  "jump",
			rom:   words(0x6004, 0x6210, 0xB200),
			steps: 3,
			results: map[Variant]uint16{
				VIP: 0x204, LegacySuperChip: 0x210, ModernSuperChip: 0x210, XOChip: 0x204,
			},
		},
		{
			name:  "vf reset",
			rom:   words(0x6F05, 0x8011),
			steps: 2,
			results: map[Variant]uint16{
				VIP: 0, LegacySuperChip: 5, ModernSuperChip: 5, XOChip: 5,
			},
		},
		{
			name:  "memory increment",
			rom:   words(0xA300, 0x6001, 0x6102, 0xF155),
			steps: 4,
			results: map[Variant]uint16{
				VIP: 0x302, LegacySuperChip: 0x301, ModernSuperChip: 0x300, XOChip: 0x302,
			},
			check: func(t *testing.T, vm *C8VM, _ Variant) {
				t.Helper()
				data, err := vm.memory.Slice(0x300, 2)
				assert.NoError(t, err)
				assert.Equal(t, []uint8{1, 2}, data)
			},
		},
	}

	for _, tt := range tests {
		for _, variant := range allVariants {
			t.Run(tt.name+" "+variant.String(), func(t *testing.T) {
				vm := newTestVM(t, variant, tt.rom)
				runSteps(t, vm, tt.steps)

				var got uint16
				switch tt.name {
				case "shift":
					got = uint16(vm.regs.V[1])
				case "jump":
					got = vm.regs.PC
				case "vf reset":
					got = uint16(vm.regs.V[0xF])
				case "memory increment":
					got = vm.regs.I
				}
				assert.Equal(t, tt.results[variant], got)
				if tt.check != nil {
					tt.check(t, vm, variant)
				}
			})
		}
	}
}

func TestCarryFlagWins(t *testing.T) {
	vm := newTestVM(t, VIP, words(0x6FFF, 0x6101, 0x8F14, 0x6005, 0x6105, 0x8015))
	runSteps(t, vm, 3)
	assert.Equal(t, uint8(1), vm.regs.V[0xF])

	runSteps(t, vm, 3)
	assert.Equal(t, uint8(0), vm.regs.V[0])
	assert.Equal(t, uint8(1), vm.regs.V[0xF])
}

func TestFlagOrdering(t *testing.T) {
	tests := []struct {
		name       string
		logicQuirk bool
		vf         uint8
	}{
		{"flag after result", true, 1},
		{"flag before result", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// VF = 0xFF + 1 overflows to 0 with carry 1
			vm := newTestVM(t, VIP, words(0x6FFF, 0x6101, 0x8F14))
			vm.quirks.LogicQuirk = tt.logicQuirk
			runSteps(t, vm, 3)
			assert.Equal(t, tt.vf, vm.regs.V[0xF])
		})
	}
}

func TestKeyWait(t *testing.T) {
	vm := newTestVM(t, VIP, words(0xF30A, 0x6001))
	res, err := vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, AwaitingKey, res)

	res, err = vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, AwaitingKey, res)
	assert.Equal(t, uint16(0x202), vm.regs.PC)

	assert.NoError(t, vm.InjectKey(0x7, true))
	assert.Equal(t, uint8(7), vm.regs.V[3])

	res, err = vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, Executed, res)
	assert.Equal(t, uint8(1), vm.regs.V[0])
}

func TestKeySkip(t *testing.T) {
	vm := newTestVM(t, VIP, words(0x6005, 0xE09E, 0x6101, 0x6202))
	assert.NoError(t, vm.InjectKey(5, true))
	runSteps(t, vm, 3)
	assert.Equal(t, uint8(0), vm.regs.V[1])
	assert.Equal(t, uint8(2), vm.regs.V[2])

	assert.NoError(t, vm.InjectKey(5, false))
	assert.Equal(t, uint16(0), vm.State().Keys)
}

func TestInvalidKey(t *testing.T) {
	vm := newTestVM(t, VIP, nil)
	err := vm.InjectKey(0x10, true)
	assert.True(t, errors.Is(err, ErrResource))
}

func TestDisplayWait(t *testing.T) {
	vm := newTestVM(t, VIP, words(0xA000, 0xD001, 0x6001))
	runSteps(t, vm, 1)

	res, err := vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, AwaitingTick, res)

	res, err = vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, AwaitingTick, res)
	assert.Equal(t, uint16(0x204), vm.regs.PC)

	vm.TickTimers()
	res, err = vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, Executed, res)
	assert.Equal(t, uint8(1), vm.regs.V[0])
}

func TestDecodeFault(t *testing.T) {
	tests := []struct {
		variant Variant
		opcode  uint16
	}{
		{VIP, 0x0000},
		{VIP, 0x00FF},
		{VIP, 0x5012},
		{LegacySuperChip, 0xF000},
		{ModernSuperChip, 0x8008},
		{XOChip, 0xE000},
	}

	for _, tt := range tests {
		t.Run(Mnemonic(tt.opcode, SetXOChip), func(t *testing.T) {
			vm := newTestVM(t, tt.variant, words(tt.opcode))
			res, err := vm.Step()
			assert.Equal(t, Faulted, res)
			var fault *DecodeFault
			assert.True(t, errors.As(err, &fault))
			assert.Equal(t, tt.opcode, fault.Opcode)
			assert.Equal(t, uint16(0x200), fault.PC)
			assert.Equal(t, uint16(0x200), vm.regs.PC)
		})
	}
}

func TestMemoryFault(t *testing.T) {
	vm := newTestVM(t, VIP, words(0xAFFF, 0xF155))
	runSteps(t, vm, 1)
	res, err := vm.Step()
	assert.Equal(t, Faulted, res)
	assert.Equal(t, StateRunning, vm.RunState())
	var fault *MemoryFault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0xFFF), fault.Addr)
	assert.Equal(t, uint16(0x202), vm.regs.PC)
	assert.Equal(t, uint16(0xFFF), vm.regs.I)
}

func TestLoadOversizeProgram(t *testing.T) {
	vm, err := NewC8VM(WithLogger(log.NewTestLogger(t)))
	assert.NoError(t, err)
	err = vm.Load(make([]byte, 0x1000-0x200+1), VIP)
	assert.True(t, errors.Is(err, ErrMemory))
	assert.NoError(t, vm.Load(make([]byte, 0x1000-0x200+1), XOChip))
}

func TestExit(t *testing.T) {
	vm := newTestVM(t, ModernSuperChip, words(0x00FD))
	res, err := vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, Halted, res)

	res, err = vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, Halted, res)
	assert.Equal(t, uint16(0x202), vm.regs.PC)
}

func TestLongIndexLoad(t *testing.T) {
	vm := newTestVM(t, XOChip, words(0xF000, 0x1234, 0x3000, 0xF000, 0xABCD, 0x6101))
	runSteps(t, vm, 1)
	assert.Equal(t, uint16(0x1234), vm.regs.I)
	assert.Equal(t, uint16(0x204), vm.regs.PC)

	runSteps(t, vm, 1)
	assert.Equal(t, uint16(0x20A), vm.regs.PC)
	runSteps(t, vm, 1)
	assert.Equal(t, uint8(1), vm.regs.V[1])
}

func TestRegisterRanges(t *testing.T) {
	vm := newTestVM(t, XOChip, words(
		0x6101, 0x6202, 0x6303, 0xA300,
		0x5132, // save V1-V3
		0x5312, // save V3-V1
		0x6100, 0x6200, 0x6300,
		0x5133, // load V1-V3
	))
	runSteps(t, vm, 5)
	data, err := vm.memory.Slice(0x300, 3)
	assert.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3}, data)

	runSteps(t, vm, 1)
	data, err = vm.memory.Slice(0x300, 3)
	assert.NoError(t, err)
	assert.Equal(t, []uint8{3, 2, 1}, data)

	runSteps(t, vm, 4)
	assert.Equal(t, uint8(3), vm.regs.V[1])
	assert.Equal(t, uint8(2), vm.regs.V[2])
	assert.Equal(t, uint8(1), vm.regs.V[3])
	assert.Equal(t, uint16(0x300), vm.regs.I)
}

func TestFlagRegistersPersist(t *testing.T) {
	vm := newTestVM(t, ModernSuperChip, words(0x6107, 0xF175))
	runSteps(t, vm, 2)
	assert.Equal(t, uint8(7), vm.FlagRegisters()[1])

	assert.NoError(t, vm.Load(words(0xF185), ModernSuperChip))
	runSteps(t, vm, 1)
	assert.Equal(t, uint8(7), vm.regs.V[1])

	vm.Reset(false)
	assert.Equal(t, [16]uint8{}, vm.FlagRegisters())
}

func TestFlagRegisterLimit(t *testing.T) {
	vm := newTestVM(t, LegacySuperChip, words(0xF875))
	_, err := vm.Step()
	assert.True(t, errors.Is(err, ErrResource))
	assert.Equal(t, uint16(0x200), vm.regs.PC)
}

func TestRandomReproducible(t *testing.T) {
	rom := words(0xC0FF, 0xC1FF, 0xC2FF, 0xC3FF)
	run := func(seed int64) [4]uint8 {
		vm, err := NewC8VM(WithSeed(seed), WithLogger(log.NewTestLogger(t)))
		assert.NoError(t, err)
		assert.NoError(t, vm.Load(rom, VIP))
		runSteps(t, vm, 4)
		return [4]uint8{vm.regs.V[0], vm.regs.V[1], vm.regs.V[2], vm.regs.V[3]}
	}

	assert.Equal(t, run(42), run(42))
	assert.True(t, run(42) != run(43))
}

func TestResetReseed(t *testing.T) {
	vm := newTestVM(t, VIP, words(0xC0FF))
	runSteps(t, vm, 1)
	first := vm.regs.V[0]

	vm.Reset(true)
	assert.Equal(t, uint16(0x200), vm.regs.PC)
	assert.NoError(t, vm.Load(words(0xC0FF), VIP))
	runSteps(t, vm, 1)
	assert.Equal(t, first, vm.regs.V[0])
}

func TestResetClearsProgram(t *testing.T) {
	vm := newTestVM(t, VIP, words(0x6001))
	vm.Reset(false)
	b, err := vm.memory.Read(0x200)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0), b)
	b, err = vm.memory.Read(0x000)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0xF0), b)
}

func TestNextSample(t *testing.T) {
	vm := newTestVM(t, XOChip, words(0x6002, 0xF018))
	assert.Equal(t, 0.0, vm.NextSample(4000))

	runSteps(t, vm, 2)
	for i := 0; i < 8; i++ {
		assert.Equal(t, -1.0, vm.NextSample(4000))
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, 1.0, vm.NextSample(4000))
	}

	vm.TickTimers()
	vm.TickTimers()
	assert.Equal(t, 0.0, vm.NextSample(4000))
}

func TestAudioInstructions(t *testing.T) {
	rom := words(0xA208, 0xF002, 0x6070, 0xF03A)
	rom = append(rom, 0xFF, 0xFF, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	vm := newTestVM(t, XOChip, rom)
	runSteps(t, vm, 4)
	assert.Equal(t, uint8(0x70), vm.audio.Pitch())
	assert.Equal(t, uint8(0xFF), vm.audio.Pattern()[0])
	assert.Equal(t, uint8(0x70), vm.State().Pitch)
}

func TestStateSnapshot(t *testing.T) {
	vm := newTestVM(t, ModernSuperChip, words(0x2204, 0x0000, 0x6A42))
	runSteps(t, vm, 2)
	state := vm.State()
	assert.Equal(t, "schip-modern", state.Variant)
	assert.Equal(t, uint16(0x206), state.PC)
	assert.Equal(t, uint8(0x42), state.V[0xA])
	assert.Equal(t, []uint16{0x202}, state.Stack)
	assert.Len(t, state.Flags, 16)
	assert.Equal(t, "running", state.RunState)

	state.Stack[0] = 0
	assert.Equal(t, []uint16{0x202}, vm.regs.Stack.Frames())
}
