package internal

// Stack holds return addresses of pending subroutine calls
type Stack struct {
	frames   []uint16 // return addresses, innermost last
	maxDepth int      // 0 means unbounded
}

// NewStack returns an empty stack limited to maxDepth frames
func NewStack(maxDepth int) Stack {
	return Stack{maxDepth: maxDepth}
}

// Push stores a return address
func (s *Stack) Push(addr uint16) error {
	if s.maxDepth > 0 && len(s.frames) >= s.maxDepth {
		return &StackFault{Overflow: true, Depth: len(s.frames)}
	}
	s.frames = append(s.frames, addr)
	return nil
}

// Pop removes and returns the innermost return address
func (s *Stack) Pop() (uint16, error) {
	if len(s.frames) == 0 {
		return 0, &StackFault{}
	}
	addr := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return addr, nil
}

// Depth returns the number of pending calls
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Frames returns a copy of the return addresses, outermost first
func (s *Stack) Frames() []uint16 {
	return append([]uint16(nil), s.frames...)
}

// Registers is the CPU register file
type Registers struct {
	V     [16]uint8 // 16 general purpose 8-bit registers, VF doubles as flag
	I     uint16    // 16-bit register that is generally used to store memory addresses
	PC    uint16    // Program counter
	DT    uint8     // Delay timer
	ST    uint8     // Sound timer
	Stack Stack     // Return addresses
}

// NewRegisters returns a register file ready to execute at the program start address
func NewRegisters(q Quirks) Registers {
	return Registers{
		PC:    pcStartAddr,
		Stack: NewStack(q.MaxStackDepth),
	}
}

// TickTimers decrements both timers, never below zero
func (r *Registers) TickTimers() {
	if r.DT > 0 {
		r.DT--
	}
	if r.ST > 0 {
		r.ST--
	}
}
