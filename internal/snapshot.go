package internal

import (
	"image"
	"image/color"
	"strings"
)

// Frame is a copy of the display surface at one point in time
type Frame struct {
	Width  int     // physical width
	Height int     // physical height
	Hires  bool    // high resolution mode was active
	Pixels []uint8 // row major palette indices, bit n set when plane n is lit
}

// DefaultPalette maps the 16 plane combinations to colours.
// Indices 0 and 1 are the classic chopper background and sprite colours.
var DefaultPalette = color.Palette{
	color.RGBA{R: 0x1A, G: 0x23, B: 0x7E, A: 0xFF},
	color.RGBA{R: 0x9F, G: 0xA8, B: 0xDA, A: 0xFF},
	color.RGBA{R: 0xFF, G: 0x00, B: 0x4D, A: 0xFF},
	color.RGBA{R: 0xFF, G: 0xEC, B: 0x27, A: 0xFF},
	color.RGBA{R: 0x7E, G: 0x25, B: 0x53, A: 0xFF},
	color.RGBA{R: 0x00, G: 0x87, B: 0x51, A: 0xFF},
	color.RGBA{R: 0xAB, G: 0x52, B: 0x36, A: 0xFF},
	color.RGBA{R: 0x5F, G: 0x57, B: 0x4F, A: 0xFF},
	color.RGBA{R: 0xC2, G: 0xC3, B: 0xC7, A: 0xFF},
	color.RGBA{R: 0xFF, G: 0xF1, B: 0xE8, A: 0xFF},
	color.RGBA{R: 0xFF, G: 0xA3, B: 0x00, A: 0xFF},
	color.RGBA{R: 0x00, G: 0xE4, B: 0x36, A: 0xFF},
	color.RGBA{R: 0x29, G: 0xAD, B: 0xFF, A: 0xFF},
	color.RGBA{R: 0x83, G: 0x76, B: 0x9C, A: 0xFF},
	color.RGBA{R: 0xFF, G: 0x77, B: 0xA8, A: 0xFF},
	color.RGBA{R: 0xFF, G: 0xCC, B: 0xAA, A: 0xFF},
}

// ColorIndex returns the palette index of the pixel at x, y
func (f Frame) ColorIndex(x, y int) uint8 {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0
	}
	return f.Pixels[y*f.Width+x]
}

// Image renders the frame with a palette, DefaultPalette when nil
func (f Frame) Image(palette color.Palette) *image.Paletted {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	img := image.NewPaletted(image.Rect(0, 0, f.Width, f.Height), palette)
	for i, v := range f.Pixels {
		if int(v) >= len(palette) {
			v = uint8(len(palette) - 1)
		}
		img.Pix[i] = v
	}
	return img
}

// String renders the frame as text, one character per physical pixel
func (f Frame) String() string {
	var sb strings.Builder
	sb.Grow((f.Width + 1) * f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if f.Pixels[y*f.Width+x] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// State is a copy of the register file suitable for JSON output
type State struct {
	Variant  string    `json:"variant"`
	PC       uint16    `json:"pc"`
	I        uint16    `json:"i"`
	V        [16]uint8 `json:"v"`
	DT       uint8     `json:"dt"`
	ST       uint8     `json:"st"`
	Stack    []uint16  `json:"stack"`
	Flags    []uint8   `json:"flags"`
	Keys     uint16    `json:"keys"`
	Planes   uint8     `json:"planes"`
	Hires    bool      `json:"hires"`
	Pitch    uint8     `json:"pitch"`
	RunState string    `json:"runState"`
}
