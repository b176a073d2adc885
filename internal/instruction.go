package internal

// Op identifies a decoded operation
type Op uint8

// Decoded operations. Comments give the opcode pattern.
const (
	OpInvalid     Op = iota
	OpCls            // 00E0
	OpRet            // 00EE
	OpScrollDown     // 00CN
	OpScrollUp       // 00DN
	OpScrollRight    // 00FB
	OpScrollLeft     // 00FC
	OpExit           // 00FD
	OpLores          // 00FE
	OpHires          // 00FF
	OpJp             // 1NNN
	OpCall           // 2NNN
	OpSeImm          // 3XKK
	OpSneImm         // 4XKK
	OpSeReg          // 5XY0
	OpSaveRange      // 5XY2
	OpLoadRange      // 5XY3
	OpLdImm          // 6XKK
	OpAddImm         // 7XKK
	OpLdReg          // 8XY0
	OpOr             // 8XY1
	OpAnd            // 8XY2
	OpXor            // 8XY3
	OpAddReg         // 8XY4
	OpSub            // 8XY5
	OpShr            // 8XY6
	OpSubn           // 8XY7
	OpShl            // 8XYE
	OpSneReg         // 9XY0
	OpLdI            // ANNN
	OpJpV0           // BNNN
	OpRnd            // CXKK
	OpDrw            // DXYN
	OpSkp            // EX9E
	OpSknp           // EXA1
	OpLdILong        // F000 NNNN
	OpPlane          // FN01
	OpAudio          // F002
	OpLdVxDT         // FX07
	OpLdKey          // FX0A
	OpLdDT           // FX15
	OpLdST           // FX18
	OpAddI           // FX1E
	OpLdFont         // FX29
	OpLdBigFont      // FX30
	OpBCD            // FX33
	OpPitch          // FX3A
	OpStore          // FX55
	OpLoad           // FX65
	OpSaveFlags      // FX75
	OpLoadFlags      // FX85
)

// Instruction is a decoded opcode with its operand fields
type Instruction struct {
	Op     Op
	Opcode uint16 // raw 16-bit opcode
	X      uint8  // the lower 4 bits of the high byte of the instruction
	Y      uint8  // the upper 4 bits of the low byte of the instruction
	N      uint8  // the lowest 4 bits of the instruction
	KK     uint8  // the lowest 8 bits of the instruction
	NNN    uint16 // the lowest 12 bits of the instruction
}

// Size returns the instruction length in bytes
func (ins Instruction) Size() uint16 {
	if ins.Op == OpLdILong {
		return 4
	}
	return 2
}

// Decode matches an opcode against the operations of an instruction set.
// OpInvalid is returned for opcodes the set does not define.
func Decode(opcode uint16, set InstructionSet) Instruction {
	ins := Instruction{
		Opcode: opcode,
		X:      uint8((opcode >> 8) & 0x000F),
		Y:      uint8((opcode >> 4) & 0x000F),
		N:      uint8(opcode & 0x000F),
		KK:     uint8(opcode & 0x00FF),
		NNN:    opcode & 0x0FFF,
	}
	schip := set >= SetSuperChip
	xo := set >= SetXOChip

	switch opcode & 0xF000 {
	case 0x0000:
		switch {
		case opcode == 0x00E0:
			ins.Op = OpCls
		case opcode == 0x00EE:
			ins.Op = OpRet
		case opcode&0xFFF0 == 0x00C0 && schip:
			ins.Op = OpScrollDown
		case opcode&0xFFF0 == 0x00D0 && xo:
			ins.Op = OpScrollUp
		case opcode == 0x00FB && schip:
			ins.Op = OpScrollRight
		case opcode == 0x00FC && schip:
			ins.Op = OpScrollLeft
		case opcode == 0x00FD && schip:
			ins.Op = OpExit
		case opcode == 0x00FE && schip:
			ins.Op = OpLores
		case opcode == 0x00FF && schip:
			ins.Op = OpHires
		}
	case 0x1000:
		ins.Op = OpJp
	case 0x2000:
		ins.Op = OpCall
	case 0x3000:
		ins.Op = OpSeImm
	case 0x4000:
		ins.Op = OpSneImm
	case 0x5000:
		switch {
		case ins.N == 0x0:
			ins.Op = OpSeReg
		case ins.N == 0x2 && xo:
			ins.Op = OpSaveRange
		case ins.N == 0x3 && xo:
			ins.Op = OpLoadRange
		}
	case 0x6000:
		ins.Op = OpLdImm
	case 0x7000:
		ins.Op = OpAddImm
	case 0x8000:
		ins.Op = aluOps[ins.N]
	case 0x9000:
		if ins.N == 0x0 {
			ins.Op = OpSneReg
		}
	case 0xA000:
		ins.Op = OpLdI
	case 0xB000:
		ins.Op = OpJpV0
	case 0xC000:
		ins.Op = OpRnd
	case 0xD000:
		ins.Op = OpDrw
	case 0xE000:
		switch ins.KK {
		case 0x9E:
			ins.Op = OpSkp
		case 0xA1:
			ins.Op = OpSknp
		}
	case 0xF000:
		ins.Op = decodeMisc(opcode, ins.KK, schip, xo)
	}
	return ins
}

var aluOps = [16]Op{
	0x0: OpLdReg,
	0x1: OpOr,
	0x2: OpAnd,
	0x3: OpXor,
	0x4: OpAddReg,
	0x5: OpSub,
	0x6: OpShr,
	0x7: OpSubn,
	0xE: OpShl,
}

func decodeMisc(opcode uint16, kk uint8, schip, xo bool) Op {
	switch {
	case opcode == 0xF000 && xo:
		return OpLdILong
	case opcode == 0xF002 && xo:
		return OpAudio
	case kk == 0x01 && xo:
		return OpPlane
	}
	switch kk {
	case 0x07:
		return OpLdVxDT
	case 0x0A:
		return OpLdKey
	case 0x15:
		return OpLdDT
	case 0x18:
		return OpLdST
	case 0x1E:
		return OpAddI
	case 0x29:
		return OpLdFont
	case 0x33:
		return OpBCD
	case 0x55:
		return OpStore
	case 0x65:
		return OpLoad
	}
	if schip {
		switch kk {
		case 0x30:
			return OpLdBigFont
		case 0x75:
			return OpSaveFlags
		case 0x85:
			return OpLoadFlags
		}
	}
	if xo && kk == 0x3A {
		return OpPitch
	}
	return OpInvalid
}
