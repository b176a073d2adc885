package internal

import "fmt"

// execute runs a decoded instruction. PC already points past the opcode.
// Handlers validate memory and stack access before mutating any state.
func (vm *C8VM) execute(ins Instruction) error {
	r := &vm.regs
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpCls: // CLS
		vm.display.Clear()
	case OpRet: // RET
		addr, err := r.Stack.Pop()
		if err != nil {
			return err
		}
		r.PC = addr
	case OpScrollDown: // SCD n
		vm.display.Scroll(ScrollDown, int(ins.N))
	case OpScrollUp: // SCU n
		vm.display.Scroll(ScrollUp, int(ins.N))
	case OpScrollRight: // SCR
		vm.display.Scroll(ScrollRight, 0)
	case OpScrollLeft: // SCL
		vm.display.Scroll(ScrollLeft, 0)
	case OpExit: // EXIT
		vm.state = StateHalted
	case OpLores: // LOW
		vm.display.SetResolution(false)
	case OpHires: // HIGH
		vm.display.SetResolution(true)
	case OpJp: // JP nnn
		r.PC = ins.NNN
	case OpCall: // CALL nnn
		if err := r.Stack.Push(r.PC); err != nil {
			return err
		}
		r.PC = ins.NNN
	case OpSeImm: // SE Vx, kk
		return vm.skipIf(r.V[x] == ins.KK)
	case OpSneImm: // SNE Vx, kk
		return vm.skipIf(r.V[x] != ins.KK)
	case OpSeReg: // SE Vx, Vy
		return vm.skipIf(r.V[x] == r.V[y])
	case OpSneReg: // SNE Vx, Vy
		return vm.skipIf(r.V[x] != r.V[y])
	case OpSaveRange: // SAVE Vx - Vy
		return vm.memory.Write(r.I, vm.registerRange(x, y))
	case OpLoadRange: // LOAD Vx - Vy
		return vm.loadRange(x, y)
	case OpLdImm: // LD Vx, kk
		r.V[x] = ins.KK
	case OpAddImm: // ADD Vx, kk
		r.V[x] += ins.KK
	case OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpShr, OpSubn, OpShl:
		vm.arithmetic(ins.Op, x, y)
	case OpLdI: // LD I, nnn
		r.I = ins.NNN
	case OpJpV0: // JP V0, nnn
		offset := r.V[0]
		if vm.quirks.JumpQuirk {
			offset = r.V[x]
		}
		r.PC = ins.NNN + uint16(offset)
	case OpRnd: // RND Vx, kk
		r.V[x] = vm.rng.Byte() & ins.KK
	case OpDrw: // DRW Vx, Vy, n
		return vm.draw(ins)
	case OpSkp: // SKP Vx
		return vm.skipIf(vm.issetKeymask(r.V[x]))
	case OpSknp: // SKNP Vx
		return vm.skipIf(!vm.issetKeymask(r.V[x]))
	case OpLdILong: // LD I, nnnn
		addr, err := vm.memory.ReadWord(r.PC)
		if err != nil {
			return err
		}
		r.I = addr
		r.PC += 2
	case OpPlane: // PLANE n
		vm.display.SetPlanes(x)
	case OpAudio: // AUDIO
		pattern, err := vm.memory.Slice(r.I, PatternSize)
		if err != nil {
			return err
		}
		return vm.audio.SetPattern(pattern)
	case OpLdVxDT: // LD Vx, DT
		r.V[x] = r.DT
	case OpLdKey: // LD Vx, K
		vm.keyReg = x
		vm.state = StateAwaitingKey
	case OpLdDT: // LD DT, Vx
		r.DT = r.V[x]
	case OpLdST: // LD ST, Vx
		r.ST = r.V[x]
	case OpAddI: // ADD I, Vx
		r.I += uint16(r.V[x])
	case OpLdFont: // LD F, Vx
		r.I = fontAddr + uint16(r.V[x]&0xF)*fontGlyphSize
	case OpLdBigFont: // LD HF, Vx
		r.I = bigFontAddr + uint16(r.V[x]&0xF)*bigFontGlyphSize
	case OpBCD: // LD B, Vx
		v := r.V[x]
		return vm.memory.Write(r.I, []uint8{v / 100, (v / 10) % 10, v % 10})
	case OpPitch: // PITCH Vx
		vm.audio.SetPitch(r.V[x])
	case OpStore: // LD [I], Vx
		if err := vm.memory.Write(r.I, r.V[:x+1]); err != nil {
			return err
		}
		vm.advanceIndex(x)
	case OpLoad: // LD Vx, [I]
		data, err := vm.memory.Slice(r.I, int(x)+1)
		if err != nil {
			return err
		}
		copy(r.V[:], data)
		vm.advanceIndex(x)
	case OpSaveFlags: // LD R, Vx
		if err := vm.checkFlagRegisters(x); err != nil {
			return err
		}
		copy(vm.flags[:x+1], r.V[:x+1])
	case OpLoadFlags: // LD Vx, R
		if err := vm.checkFlagRegisters(x); err != nil {
			return err
		}
		copy(r.V[:x+1], vm.flags[:x+1])
	default:
		return &DecodeFault{Opcode: ins.Opcode, PC: r.PC - 2}
	}
	return nil
}

// skipIf advances PC past the next instruction, which is 4 bytes long
// for the XO-CHIP F000 NNNN form
func (vm *C8VM) skipIf(cond bool) error {
	if !cond {
		return nil
	}
	if vm.quirks.InstructionSet >= SetXOChip {
		next, err := vm.memory.ReadWord(vm.regs.PC)
		if err != nil {
			return err
		}
		if next == 0xF000 {
			vm.regs.PC += 2
		}
	}
	vm.regs.PC += 2
	return nil
}

func (vm *C8VM) arithmetic(op Op, x, y uint8) {
	r := &vm.regs
	vx, vy := r.V[x], r.V[y]

	switch op {
	case OpLdReg: // LD Vx, Vy
		r.V[x] = vy
	case OpOr: // OR Vx, Vy
		r.V[x] = vx | vy
		vm.resetFlag()
	case OpAnd: // AND Vx, Vy
		r.V[x] = vx & vy
		vm.resetFlag()
	case OpXor: // XOR Vx, Vy
		r.V[x] = vx ^ vy
		vm.resetFlag()
	case OpAddReg: // ADD Vx, Vy
		sum := uint16(vx) + uint16(vy)
		vm.setWithFlag(x, uint8(sum), boolFlag(sum > 0xFF))
	case OpSub: // SUB Vx, Vy
		vm.setWithFlag(x, vx-vy, boolFlag(vx >= vy))
	case OpSubn: // SUBN Vx, Vy
		vm.setWithFlag(x, vy-vx, boolFlag(vy >= vx))
	case OpShr: // SHR Vx {, Vy}
		src := vy
		if vm.quirks.ShiftQuirk {
			src = vx
		}
		vm.setWithFlag(x, src>>1, src&0x01)
	case OpShl: // SHL Vx {, Vy}
		src := vy
		if vm.quirks.ShiftQuirk {
			src = vx
		}
		vm.setWithFlag(x, src<<1, src>>7)
	}
}

func (vm *C8VM) resetFlag() {
	if vm.quirks.VFReset {
		vm.regs.V[0xF] = 0
	}
}

// setWithFlag stores an arithmetic result and its carry or borrow flag.
// The write order decides which value VF keeps when x is 0xF.
func (vm *C8VM) setWithFlag(x, result, flag uint8) {
	if vm.quirks.LogicQuirk {
		vm.regs.V[x] = result
		vm.regs.V[0xF] = flag
		return
	}
	vm.regs.V[0xF] = flag
	vm.regs.V[x] = result
}

func boolFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (vm *C8VM) draw(ins Instruction) error {
	width, size := 8, int(ins.N)
	if ins.N == 0 && vm.quirks.InstructionSet >= SetSuperChip {
		if vm.quirks.LoresBigSprite == BigSprite8x16 && !vm.display.Hires() {
			size = 16
		} else {
			width, size = 16, 32
		}
	}
	sprite, err := vm.memory.Slice(vm.regs.I, size*vm.display.ActivePlanes())
	if err != nil {
		return err
	}
	vm.regs.V[0xF] = vm.display.Draw(vm.regs.V[ins.X], vm.regs.V[ins.Y], sprite, width)
	if vm.quirks.DisplayWait {
		vm.state = StateAwaitingTick
	}
	return nil
}

func (vm *C8VM) advanceIndex(x uint8) {
	switch vm.quirks.MemoryIncrement {
	case IncrementByXPlus1:
		vm.regs.I += uint16(x) + 1
	case IncrementByX:
		vm.regs.I += uint16(x)
	}
}

// registerRange returns Vx through Vy, in descending register order when x > y
func (vm *C8VM) registerRange(x, y uint8) []uint8 {
	if x <= y {
		return append([]uint8(nil), vm.regs.V[x:y+1]...)
	}
	out := make([]uint8, 0, x-y+1)
	for i := int(x); i >= int(y); i-- {
		out = append(out, vm.regs.V[i])
	}
	return out
}

func (vm *C8VM) loadRange(x, y uint8) error {
	lo, hi := x, y
	if x > y {
		lo, hi = y, x
	}
	data, err := vm.memory.Slice(vm.regs.I, int(hi-lo)+1)
	if err != nil {
		return err
	}
	for i, b := range data {
		if x <= y {
			vm.regs.V[int(x)+i] = b
		} else {
			vm.regs.V[int(x)-i] = b
		}
	}
	return nil
}

func (vm *C8VM) checkFlagRegisters(x uint8) error {
	if int(x) >= vm.quirks.FlagRegisters {
		return &ResourceFault{
			Resource: "flag registers",
			Reason:   fmt.Sprintf("V%X exceeds %d persisted registers", x, vm.quirks.FlagRegisters),
		}
	}
	return nil
}
