package internal

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// names of operations missing from the base CHIP-8 opcode table
var extendedNames = map[Op]string{
	OpScrollDown:  "scd",
	OpScrollUp:    "scu",
	OpScrollRight: "scr",
	OpScrollLeft:  "scl",
	OpExit:        "exit",
	OpLores:       "low",
	OpHires:       "high",
	OpSaveRange:   "save",
	OpLoadRange:   "load",
	OpLdILong:     "ld",
	OpPlane:       "plane",
	OpAudio:       "audio",
	OpLdBigFont:   "ld",
	OpPitch:       "pitch",
	OpSaveFlags:   "ld",
	OpLoadFlags:   "ld",
}

// Name returns the assembler mnemonic of the instruction
func (ins Instruction) Name() string {
	if ins.Op == OpInvalid {
		return "invalid"
	}
	if name, ok := extendedNames[ins.Op]; ok {
		return name
	}
	for _, op := range chip8.Opcodes[int(ins.Opcode>>12)] {
		if op.Instruction != nil && op.Info.Mask&ins.Opcode == op.Info.Value {
			return op.Instruction.Name
		}
	}
	return "invalid"
}

// String returns the instruction in assembler syntax
func (ins Instruction) String() string {
	name := ins.Name()
	switch ins.Op {
	case OpInvalid:
		return fmt.Sprintf("%s $%04X", name, ins.Opcode)
	case OpCls, OpRet, OpScrollRight, OpScrollLeft, OpExit, OpLores, OpHires, OpAudio:
		return name
	case OpScrollDown, OpScrollUp:
		return fmt.Sprintf("%s $%X", name, ins.N)
	case OpJp, OpCall:
		return fmt.Sprintf("%s $%X", name, ins.NNN)
	case OpJpV0:
		return fmt.Sprintf("%s V0, $%X", name, ins.NNN)
	case OpSeImm, OpSneImm, OpLdImm, OpAddImm, OpRnd:
		return fmt.Sprintf("%s V%X, $%02X", name, ins.X, ins.KK)
	case OpSeReg, OpSneReg, OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpShr, OpSubn, OpShl,
		OpSaveRange, OpLoadRange:
		return fmt.Sprintf("%s V%X, V%X", name, ins.X, ins.Y)
	case OpDrw:
		return fmt.Sprintf("%s V%X, V%X, $%X", name, ins.X, ins.Y, ins.N)
	case OpSkp, OpSknp:
		return fmt.Sprintf("%s V%X", name, ins.X)
	case OpLdI:
		return fmt.Sprintf("%s I, $%X", name, ins.NNN)
	case OpLdILong:
		return name + " I, long"
	case OpPlane:
		return fmt.Sprintf("%s $%X", name, ins.X)
	case OpLdVxDT:
		return fmt.Sprintf("%s V%X, DT", name, ins.X)
	case OpLdKey:
		return fmt.Sprintf("%s V%X, K", name, ins.X)
	case OpLdDT:
		return fmt.Sprintf("%s DT, V%X", name, ins.X)
	case OpLdST:
		return fmt.Sprintf("%s ST, V%X", name, ins.X)
	case OpAddI:
		return fmt.Sprintf("%s I, V%X", name, ins.X)
	case OpLdFont:
		return fmt.Sprintf("%s F, V%X", name, ins.X)
	case OpLdBigFont:
		return fmt.Sprintf("%s HF, V%X", name, ins.X)
	case OpBCD:
		return fmt.Sprintf("%s B, V%X", name, ins.X)
	case OpPitch:
		return fmt.Sprintf("%s V%X", name, ins.X)
	case OpStore:
		return fmt.Sprintf("%s [I], V%X", name, ins.X)
	case OpLoad:
		return fmt.Sprintf("%s V%X, [I]", name, ins.X)
	case OpSaveFlags:
		return fmt.Sprintf("%s R, V%X", name, ins.X)
	case OpLoadFlags:
		return fmt.Sprintf("%s V%X, R", name, ins.X)
	}
	return name
}

// Mnemonic decodes opcode for an instruction set and returns its assembler form
func Mnemonic(opcode uint16, set InstructionSet) string {
	return Decode(opcode, set).String()
}
