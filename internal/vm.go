package internal

// Follows the CHIP-8 technical reference found at http://devernay.free.fr/hacks/chip8/C8TECH10.HTM
// with the SUPER-CHIP and XO-CHIP extensions as implemented by Octo.

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// TimerFrequency is the timer period in milliseconds
const TimerFrequency = float64(1000.0 / 60)

// RunState is the blocking condition of the machine
type RunState uint8

// Machine run states, checked at the start of every Step
const (
	StateRunning RunState = iota
	StateAwaitingKey
	StateAwaitingTick
	StateHalted
)

var runStateNames = [...]string{"running", "awaiting key", "awaiting tick", "halted"}

func (s RunState) String() string {
	if int(s) < len(runStateNames) {
		return runStateNames[s]
	}
	return fmt.Sprintf("RunState(%d)", uint8(s))
}

// Result describes the machine after a Step
type Result uint8

// Step results
const (
	Executed     Result = iota // an instruction ran and the machine can continue
	AwaitingKey                // FX0A is waiting for a key press
	AwaitingTick               // display wait is holding until the next timer tick
	Halted                     // 00FD stopped the program
	Faulted                    // the instruction failed and was rolled back, see the returned error
)

var resultNames = [...]string{"executed", "awaiting key", "awaiting tick", "halted", "faulted"}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return fmt.Sprintf("Result(%d)", uint8(r))
}

// C8VM is an emulated CHIP-8 family machine
type C8VM struct {
	quirks   Quirks      // active variant profile
	memory   *Memory     // 4 KB or 64 KB global memory
	regs     Registers   // V0-VF, I, PC, stack and timers
	display  *Display    // bit-plane framebuffer
	audio    *AudioUnit  // XO-CHIP pattern playback
	rng      *Random     // CXNN source
	seed     int64       // seed restored by Reset(true)
	flags    [16]uint8   // FX75/FX85 storage, survives Load
	state    RunState    // blocking condition checked by Step
	keyReg   uint8       // destination register of a pending FX0A
	logger   *log.Logger // debug output for loads, resets and faults
	seedSet  bool        // seed was supplied by the host
	programs int         // number of programs loaded this session

	// A 16-bit integer to hold the current key values in the form of individual bits.
	// So when 0 is pushed in the keypad, the 0'th bit will be set and so on.
	key uint16
}

// Option configures a new machine
type Option func(*C8VM)

// WithSeed makes CXNN reproducible
func WithSeed(seed int64) Option {
	return func(vm *C8VM) {
		vm.seed = seed
		vm.seedSet = true
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *log.Logger) Option {
	return func(vm *C8VM) {
		vm.logger = logger
	}
}

// NewC8VM creates a new instance of an emulated machine in the VIP profile
// with no program loaded
func NewC8VM(opts ...Option) (*C8VM, error) {
	vm := &C8VM{}
	for _, opt := range opts {
		opt(vm)
	}
	if !vm.seedSet {
		vm.seed = time.Now().UnixNano()
	}
	if vm.logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		vm.logger = log.NewWithConfig(cfg)
	}
	vm.rng = NewRandom(vm.seed)
	vm.audio = NewAudioUnit()

	q, err := ProfileFor(VIP)
	if err != nil {
		return nil, err
	}
	vm.powerOn(q)
	return vm, nil
}

func (vm *C8VM) powerOn(q Quirks) {
	vm.quirks = q
	vm.memory = NewMemory(q)
	vm.regs = NewRegisters(q)
	vm.display = NewDisplay(q)
	vm.audio.Reset()
	vm.state = StateRunning
	vm.keyReg = 0
	vm.key = 0
}

// Load resets the machine into the profile of variant and copies rom to 0x200.
// Flag registers and the random sequence carry over from the previous program.
func (vm *C8VM) Load(rom []byte, variant Variant) error {
	q, err := ProfileFor(variant)
	if err != nil {
		return err
	}
	mem := NewMemory(q)
	if err := mem.LoadProgram(rom); err != nil {
		return err
	}
	vm.powerOn(q)
	vm.memory = mem
	vm.programs++
	vm.logger.Debug("Loaded program",
		log.String("variant", variant.String()),
		log.Int("size", len(rom)),
		log.Int("session_programs", vm.programs))
	return nil
}

// LoadProgram loads a program file into the VM's memory
func (vm *C8VM) LoadProgram(filename string, variant Variant) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error loading program: %w", err)
	}
	if err := vm.Load(data, variant); err != nil {
		return fmt.Errorf("error loading program '%s': %w", filename, err)
	}
	return nil
}

// Reset returns the machine to power-on defaults for the active variant.
// The loaded program and flag registers are cleared; reseed restarts the
// random sequence from the machine's seed.
func (vm *C8VM) Reset(reseed bool) {
	vm.powerOn(vm.quirks)
	vm.flags = [16]uint8{}
	if reseed {
		vm.rng.Reseed(vm.seed)
	}
	vm.logger.Debug("Machine reset",
		log.String("variant", vm.quirks.Variant.String()),
		log.String("reseed", strconv.FormatBool(reseed)))
}

// Step executes one instruction unless the machine is blocked.
// A failed instruction returns Faulted with the error and leaves the machine
// as it was before the instruction.
func (vm *C8VM) Step() (Result, error) {
	if vm.state != StateRunning {
		return vm.result(), nil
	}

	prev := vm.regs
	opcode, err := vm.memory.ReadWord(vm.regs.PC)
	if err != nil {
		return vm.fault(prev, opcode, err)
	}
	ins := Decode(opcode, vm.quirks.InstructionSet)
	if ins.Op == OpInvalid {
		return vm.fault(prev, opcode, &DecodeFault{Opcode: opcode, PC: prev.PC})
	}
	vm.regs.PC += 2
	if err := vm.execute(ins); err != nil {
		return vm.fault(prev, opcode, err)
	}
	return vm.result(), nil
}

// fault restores the registers saved before the failed instruction.
// The run state is untouched so the next Step retries the same instruction.
func (vm *C8VM) fault(prev Registers, opcode uint16, err error) (Result, error) {
	vm.regs = prev
	vm.logger.Debug("Instruction fault",
		log.Hex("pc", prev.PC),
		log.Hex("opcode", opcode),
		log.String("instruction", Mnemonic(opcode, vm.quirks.InstructionSet)),
		log.Err(err))
	return Faulted, err
}

func (vm *C8VM) result() Result {
	switch vm.state {
	case StateAwaitingKey:
		return AwaitingKey
	case StateAwaitingTick:
		return AwaitingTick
	case StateHalted:
		return Halted
	default:
		return Executed
	}
}

// TickTimers decrements DT and ST and releases a pending display wait.
// Hosts call it once per 60 Hz period.
func (vm *C8VM) TickTimers() {
	vm.regs.TickTimers()
	if vm.state == StateAwaitingTick {
		vm.state = StateRunning
	}
}

// InjectKey updates the keypad; a press completes a pending FX0A
func (vm *C8VM) InjectKey(code uint8, pressed bool) error {
	if code > 0xF {
		return &ResourceFault{Resource: "keypad", Reason: fmt.Sprintf("invalid key %X", code)}
	}
	if !pressed {
		vm.key &^= 1 << code
		return nil
	}
	vm.key |= 1 << code
	if vm.state == StateAwaitingKey {
		vm.regs.V[vm.keyReg] = code
		vm.state = StateRunning
	}
	return nil
}

func (vm *C8VM) issetKeymask(code uint8) bool {
	mask := uint16(1) << (code & 0xF)
	return vm.key&mask == mask
}

// SoundActive returns whether the sound timer is running
func (vm *C8VM) SoundActive() bool {
	return vm.regs.ST > 0
}

// NextSample returns the next audio sample at outputRate samples per second.
// The output is silent and the pattern restarts while the sound timer is zero.
func (vm *C8VM) NextSample(outputRate int) float64 {
	if vm.regs.ST == 0 {
		vm.audio.ResetPhase()
		return 0
	}
	return vm.audio.NextSample(outputRate)
}

// Frame returns a copy of the display
func (vm *C8VM) Frame() Frame {
	return vm.display.Frame()
}

// Quirks returns the active profile
func (vm *C8VM) Quirks() Quirks {
	return vm.quirks
}

// RunState returns the blocking condition of the machine
func (vm *C8VM) RunState() RunState {
	return vm.state
}

// FlagRegisters returns the persisted FX75/FX85 storage
func (vm *C8VM) FlagRegisters() [16]uint8 {
	return vm.flags
}

// CurrentInstruction decodes the opcode at PC without executing it
func (vm *C8VM) CurrentInstruction() (Instruction, error) {
	opcode, err := vm.memory.ReadWord(vm.regs.PC)
	if err != nil {
		return Instruction{}, err
	}
	return Decode(opcode, vm.quirks.InstructionSet), nil
}

// State returns a copy of the registers, timers and run state
func (vm *C8VM) State() State {
	return State{
		Variant:  vm.quirks.Variant.String(),
		PC:       vm.regs.PC,
		I:        vm.regs.I,
		V:        vm.regs.V,
		DT:       vm.regs.DT,
		ST:       vm.regs.ST,
		Stack:    vm.regs.Stack.Frames(),
		Flags:    append([]uint8(nil), vm.flags[:vm.quirks.FlagRegisters]...),
		Keys:     vm.key,
		Planes:   vm.display.Planes(),
		Hires:    vm.display.Hires(),
		Pitch:    vm.audio.Pitch(),
		RunState: vm.state.String(),
	}
}
