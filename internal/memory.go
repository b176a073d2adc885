package internal

// Memory layout constants
const (
	totalMemory    = 0x1000
	extendedMemory = 0x10000
	pcStartAddr    = 0x200

	fontAddr    = 0x000
	bigFontAddr = 0x050

	fontGlyphSize    = 5
	bigFontGlyphSize = 10
)

var fontset = []uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// 8x10 digits used by FX30. XO-CHIP extends the set with A-F.
var bigFontset = []uint8{
	0x3C, 0x7E, 0xE7, 0xC3, 0xC3, 0xC3, 0xC3, 0xE7, 0x7E, 0x3C, // 0
	0x18, 0x38, 0x58, 0x18, 0x18, 0x18, 0x18, 0x18, 0x18, 0x3C, // 1
	0x3E, 0x7F, 0xC3, 0x06, 0x0C, 0x18, 0x30, 0x60, 0xFF, 0xFF, // 2
	0x3C, 0x7E, 0xC3, 0x03, 0x0E, 0x0E, 0x03, 0xC3, 0x7E, 0x3C, // 3
	0x06, 0x0E, 0x1E, 0x36, 0x66, 0xC6, 0xFF, 0xFF, 0x06, 0x06, // 4
	0xFF, 0xFF, 0xC0, 0xC0, 0xFC, 0xFE, 0x03, 0xC3, 0x7E, 0x3C, // 5
	0x3E, 0x7C, 0xE0, 0xC0, 0xFC, 0xFE, 0xC3, 0xC3, 0x7E, 0x3C, // 6
	0xFF, 0xFF, 0x03, 0x06, 0x0C, 0x18, 0x30, 0x60, 0x60, 0x60, // 7
	0x3C, 0x7E, 0xC3, 0xC3, 0x7E, 0x7E, 0xC3, 0xC3, 0x7E, 0x3C, // 8
	0x3C, 0x7E, 0xC3, 0xC3, 0x7F, 0x3F, 0x03, 0x03, 0x3E, 0x7C, // 9
	0x7E, 0xFF, 0xC3, 0xC3, 0xC3, 0xFF, 0xFF, 0xC3, 0xC3, 0xC3, // A
	0xFC, 0xFC, 0xC3, 0xC3, 0xFC, 0xFC, 0xC3, 0xC3, 0xFC, 0xFC, // B
	0x3C, 0xFF, 0xC3, 0xC0, 0xC0, 0xC0, 0xC0, 0xC3, 0xFF, 0x3C, // C
	0xFC, 0xFE, 0xC3, 0xC3, 0xC3, 0xC3, 0xC3, 0xC3, 0xFE, 0xFC, // D
	0xFF, 0xFF, 0xC0, 0xC0, 0xFF, 0xFF, 0xC0, 0xC0, 0xFF, 0xFF, // E
	0xFF, 0xFF, 0xC0, 0xC0, 0xFF, 0xFF, 0xC0, 0xC0, 0xC0, 0xC0, // F
}

// Memory is the byte addressable space of the machine
type Memory struct {
	data []uint8 // backing store, 4 KiB or 64 KiB
	wrap bool    // addresses wrap modulo the size instead of faulting
}

// NewMemory returns memory of the profile's size with the fonts preloaded
func NewMemory(q Quirks) *Memory {
	m := &Memory{
		data: make([]uint8, q.MemorySize()),
		wrap: q.MemoryWrap,
	}
	copy(m.data[fontAddr:], fontset)
	switch q.InstructionSet {
	case SetSuperChip:
		copy(m.data[bigFontAddr:], bigFontset[:10*bigFontGlyphSize])
	case SetXOChip:
		copy(m.data[bigFontAddr:], bigFontset)
	}
	return m
}

// Size returns the number of addressable bytes
func (m *Memory) Size() int {
	return len(m.data)
}

// LoadProgram copies a ROM image to the program start address
func (m *Memory) LoadProgram(rom []byte) error {
	if len(rom) > len(m.data)-pcStartAddr {
		return &MemoryFault{Addr: pcStartAddr, Len: len(rom), Size: len(m.data)}
	}
	copy(m.data[pcStartAddr:], rom)
	return nil
}

func (m *Memory) check(addr uint16, n int) error {
	if m.wrap && n <= len(m.data) {
		return nil
	}
	if int(addr)+n > len(m.data) {
		return &MemoryFault{Addr: addr, Len: n, Size: len(m.data)}
	}
	return nil
}

func (m *Memory) index(addr uint16, i int) int {
	return (int(addr) + i) % len(m.data)
}

// Read returns the byte at addr
func (m *Memory) Read(addr uint16) (uint8, error) {
	if err := m.check(addr, 1); err != nil {
		return 0, err
	}
	return m.data[m.index(addr, 0)], nil
}

// ReadWord returns the big-endian word at addr
func (m *Memory) ReadWord(addr uint16) (uint16, error) {
	if err := m.check(addr, 2); err != nil {
		return 0, err
	}
	return uint16(m.data[m.index(addr, 0)])<<8 | uint16(m.data[m.index(addr, 1)]), nil
}

// Slice returns a copy of n bytes starting at addr
func (m *Memory) Slice(addr uint16, n int) ([]uint8, error) {
	if err := m.check(addr, n); err != nil {
		return nil, err
	}
	buf := make([]uint8, n)
	for i := range buf {
		buf[i] = m.data[m.index(addr, i)]
	}
	return buf, nil
}

// Write stores b at addr. Nothing is written if any byte is out of range.
func (m *Memory) Write(addr uint16, b []uint8) error {
	if err := m.check(addr, len(b)); err != nil {
		return err
	}
	for i, v := range b {
		m.data[m.index(addr, i)] = v
	}
	return nil
}
