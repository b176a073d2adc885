package internal

import (
	"fmt"
	"strings"
)

// Variant selects one member of the CHIP-8 family
type Variant uint8

// Supported CHIP-8 variants
const (
	VIP Variant = iota
	LegacySuperChip
	ModernSuperChip
	XOChip
)

var variantNames = map[Variant]string{
	VIP:             "vip",
	LegacySuperChip: "schip-legacy",
	ModernSuperChip: "schip-modern",
	XOChip:          "xo",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

// ParseVariant returns the variant for a name as printed by Variant.String
func ParseVariant(name string) (Variant, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for v, n := range variantNames {
		if n == name {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown variant '%s'", name)
}

// InstructionSet is the opcode level a profile decodes
type InstructionSet uint8

// Instruction set levels, each one a superset of the previous
const (
	SetChip8 InstructionSet = iota
	SetSuperChip
	SetXOChip
)

// MemoryIncrement controls how FX55/FX65 advance I
type MemoryIncrement uint8

// FX55/FX65 index behaviours
const (
	IncrementByXPlus1 MemoryIncrement = iota // I += X + 1 (COSMAC VIP)
	IncrementByX                             // I += X (SUPER-CHIP 1.1)
	IncrementNone                            // I unchanged
)

// CollisionMode selects what DXYN reports through VF
type CollisionMode uint8

// Collision reporting modes
const (
	CollisionFlag     CollisionMode = iota // VF = 1 when any pixel was erased
	CollisionRowCount                      // VF = colliding rows plus rows clipped at the bottom, hires only
)

// BigSprite is the shape DXY0 draws in low resolution
type BigSprite uint8

// Low resolution DXY0 shapes
const (
	BigSprite16x16 BigSprite = iota
	BigSprite8x16
)

// Quirks is the immutable behaviour profile of a variant.
// Instruction handlers read these flags instead of checking the variant.
type Quirks struct {
	Variant        Variant
	InstructionSet InstructionSet

	VFReset         bool            // 8XY1/8XY2/8XY3 clear VF
	MemoryIncrement MemoryIncrement // FX55/FX65 index advance
	DisplayWait     bool            // DXYN blocks until the next timer tick
	ClipSprites     bool            // sprites clip at the edges instead of wrapping
	ShiftQuirk      bool            // 8XY6/8XYE shift VX in place, ignoring VY
	JumpQuirk       bool            // BXNN jumps to XNN + VX
	LogicQuirk      bool            // carry/borrow flag is written after the result

	Collision      CollisionMode
	LoresBigSprite BigSprite
	LoresHalfPixel bool // low resolution draws and scrolls in physical 128x64 units

	ExtendedMemory bool // 64 KiB address space
	MemoryWrap     bool // addresses wrap instead of faulting
	BitPlanes      int  // number of drawable planes
	Hires          bool // 128x64 surface with 00FE/00FF
	MaxStackDepth  int  // 0 means unbounded
	FlagRegisters  int  // FX75/FX85 capacity
}

var profiles = map[Variant]Quirks{
	VIP: {
		Variant:         VIP,
		InstructionSet:  SetChip8,
		VFReset:         true,
		MemoryIncrement: IncrementByXPlus1,
		DisplayWait:     true,
		ClipSprites:     true,
		LogicQuirk:      true,
		Collision:       CollisionFlag,
		BitPlanes:       1,
		MaxStackDepth:   12,
	},
	LegacySuperChip: {
		Variant:         LegacySuperChip,
		InstructionSet:  SetSuperChip,
		MemoryIncrement: IncrementByX,
		ClipSprites:     true,
		ShiftQuirk:      true,
		JumpQuirk:       true,
		LogicQuirk:      true,
		Collision:       CollisionRowCount,
		LoresBigSprite:  BigSprite8x16,
		LoresHalfPixel:  true,
		BitPlanes:       1,
		Hires:           true,
		FlagRegisters:   8,
	},
	ModernSuperChip: {
		Variant:         ModernSuperChip,
		InstructionSet:  SetSuperChip,
		MemoryIncrement: IncrementNone,
		ClipSprites:     true,
		ShiftQuirk:      true,
		JumpQuirk:       true,
		LogicQuirk:      true,
		Collision:       CollisionFlag,
		LoresBigSprite:  BigSprite16x16,
		BitPlanes:       1,
		Hires:           true,
		FlagRegisters:   16,
	},
	XOChip: {
		Variant:         XOChip,
		InstructionSet:  SetXOChip,
		MemoryIncrement: IncrementByXPlus1,
		LogicQuirk:      true,
		Collision:       CollisionFlag,
		LoresBigSprite:  BigSprite16x16,
		ExtendedMemory:  true,
		MemoryWrap:      true,
		BitPlanes:       4,
		Hires:           true,
		FlagRegisters:   16,
	},
}

// ProfileFor returns the quirk profile of a variant
func ProfileFor(v Variant) (Quirks, error) {
	q, ok := profiles[v]
	if !ok {
		return Quirks{}, &ResourceFault{Resource: "variant", Reason: fmt.Sprintf("unsupported %s", v)}
	}
	return q, nil
}

// MemorySize returns the size of the address space in bytes
func (q Quirks) MemorySize() int {
	if q.ExtendedMemory {
		return extendedMemory
	}
	return totalMemory
}

// ScreenSize returns the physical surface dimensions
func (q Quirks) ScreenSize() (int, int) {
	if q.Hires {
		return HiresWidth, HiresHeight
	}
	return ScreenWidth, ScreenHeight
}
