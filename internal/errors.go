package internal

import (
	"errors"
	"fmt"
)

// Sentinel fault kinds, matched with errors.Is
var (
	ErrDecode   = errors.New("decode fault")
	ErrStack    = errors.New("stack fault")
	ErrMemory   = errors.New("memory fault")
	ErrResource = errors.New("resource fault")
)

// DecodeFault is returned for an opcode the active profile does not know
type DecodeFault struct {
	Opcode uint16
	PC     uint16
}

func (e *DecodeFault) Error() string {
	return fmt.Sprintf("unknown opcode %04X at %04X", e.Opcode, e.PC)
}

// Is reports ErrDecode
func (e *DecodeFault) Is(target error) bool {
	return target == ErrDecode
}

// StackFault is returned when a call exceeds the stack depth or a return finds it empty
type StackFault struct {
	Overflow bool
	Depth    int
}

func (e *StackFault) Error() string {
	if e.Overflow {
		return fmt.Sprintf("stack overflow at depth %d", e.Depth)
	}
	return "stack underflow"
}

// Is reports ErrStack
func (e *StackFault) Is(target error) bool {
	return target == ErrStack
}

// MemoryFault is returned for an access outside the address space
type MemoryFault struct {
	Addr uint16
	Len  int
	Size int
}

func (e *MemoryFault) Error() string {
	return fmt.Sprintf("access of %d bytes at %04X outside %d byte memory", e.Len, e.Addr, e.Size)
}

// Is reports ErrMemory
func (e *MemoryFault) Is(target error) bool {
	return target == ErrMemory
}

// ResourceFault is returned for invalid host supplied values or exhausted resources
type ResourceFault struct {
	Resource string
	Reason   string
}

func (e *ResourceFault) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Reason)
}

// Is reports ErrResource
func (e *ResourceFault) Is(target error) bool {
	return target == ErrResource
}
