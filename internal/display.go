package internal

// Display constants
const (
	ScreenWidth  = 64
	ScreenHeight = 32
	HiresWidth   = 128
	HiresHeight  = 64

	maxPlanes = 4
)

// ScrollDirection is the direction content moves in on a scroll
type ScrollDirection uint8

// Scroll directions
const (
	ScrollUp ScrollDirection = iota
	ScrollDown
	ScrollLeft
	ScrollRight
)

// Display is a set of bit-planes sharing one physical pixel grid.
// In low resolution on a 128x64 surface each logical pixel covers a 2x2 block.
type Display struct {
	width  int     // physical width
	height int     // physical height
	hires  bool    // 128x64 logical resolution active
	planes uint8   // plane mask targeted by draw, clear and scroll
	pixels []uint8 // one byte per physical pixel, bit n is plane n
	quirks Quirks
}

// NewDisplay returns a cleared low resolution surface targeting plane 1
func NewDisplay(q Quirks) *Display {
	w, h := q.ScreenSize()
	return &Display{
		width:  w,
		height: h,
		planes: 1,
		pixels: make([]uint8, w*h),
		quirks: q,
	}
}

// Hires returns whether high resolution mode is active
func (d *Display) Hires() bool {
	return d.hires
}

func (d *Display) scale() int {
	if d.hires || d.width == ScreenWidth {
		return 1
	}
	return 2
}

// SetPlanes selects the planes subsequent operations target
func (d *Display) SetPlanes(mask uint8) {
	d.planes = mask & (1<<uint(d.quirks.BitPlanes) - 1)
}

// Planes returns the selected plane mask
func (d *Display) Planes() uint8 {
	return d.planes
}

// ActivePlanes returns how many planes are selected
func (d *Display) ActivePlanes() int {
	n := 0
	for p := 0; p < maxPlanes; p++ {
		if d.planes&(1<<uint(p)) != 0 {
			n++
		}
	}
	return n
}

// Clear unsets every pixel of the selected planes
func (d *Display) Clear() {
	for i := range d.pixels {
		d.pixels[i] &^= d.planes
	}
}

// SetResolution switches between low and high resolution, clearing all planes
func (d *Display) SetResolution(hires bool) {
	d.hires = hires && d.quirks.Hires
	for i := range d.pixels {
		d.pixels[i] = 0
	}
}

// Draw composites a sprite with exclusive-OR and returns the VF value.
// sprite holds consecutive rows per selected plane, lowest plane first;
// width is 8 or 16 pixels.
func (d *Display) Draw(x, y uint8, sprite []uint8, width int) uint8 {
	planes := d.ActivePlanes()
	bytesPerRow := width / 8
	if planes == 0 || bytesPerRow == 0 {
		return 0
	}
	rows := len(sprite) / planes / bytesPerRow
	if d.quirks.LoresHalfPixel && d.scale() == 2 {
		return d.drawHalfPixel(x, y, sprite, rows, width)
	}

	s := d.scale()
	lw, lh := d.width/s, d.height/s
	x0, y0 := int(x)%lw, int(y)%lh
	hitRows, clipped := 0, 0
	chunk := 0
	for p := 0; p < maxPlanes; p++ {
		bit := uint8(1) << uint(p)
		if d.planes&bit == 0 {
			continue
		}
		data := sprite[chunk*rows*bytesPerRow : (chunk+1)*rows*bytesPerRow]
		chunk++
		for r := 0; r < rows; r++ {
			ly := y0 + r
			if ly >= lh {
				if d.quirks.ClipSprites {
					clipped++
					continue
				}
				ly %= lh
			}
			line := spriteRow(data, r, bytesPerRow)
			hit := false
			for c := 0; c < width; c++ {
				if line&(1<<uint(width-1-c)) == 0 {
					continue
				}
				lx := x0 + c
				if lx >= lw {
					if d.quirks.ClipSprites {
						continue
					}
					lx %= lw
				}
				if d.toggle(lx, ly, s, bit) {
					hit = true
				}
			}
			if hit {
				hitRows++
			}
		}
	}

	if d.quirks.Collision == CollisionRowCount && d.hires {
		return uint8(hitRows + clipped)
	}
	if hitRows > 0 {
		return 1
	}
	return 0
}

// toggle flips one logical pixel and reports whether a set pixel was erased
func (d *Display) toggle(lx, ly, s int, bit uint8) bool {
	erased := false
	for dy := 0; dy < s; dy++ {
		row := (ly*s + dy) * d.width
		for dx := 0; dx < s; dx++ {
			idx := row + lx*s + dx
			if d.pixels[idx]&bit != 0 {
				erased = true
			}
			d.pixels[idx] ^= bit
		}
	}
	return erased
}

// drawHalfPixel reproduces SUPER-CHIP 1.1 low resolution drawing: each row
// lands on an even physical line and only the 32 pixel zone around the
// sprite is copied down to the odd line below it.
func (d *Display) drawHalfPixel(x, y uint8, sprite []uint8, rows, width int) uint8 {
	px0 := (int(x) * 2) % d.width
	py0 := (int(y) * 2) % d.height
	zone := px0 & 0xF0
	end := min(zone+32, d.width)
	collided := false
	for r := 0; r < rows; r++ {
		py := py0 + 2*r
		if py >= d.height {
			break
		}
		line := spriteRow(sprite, r, width/8)
		row := py * d.width
		for c := 0; c < width; c++ {
			if line&(1<<uint(width-1-c)) == 0 {
				continue
			}
			for dx := 0; dx < 2; dx++ {
				px := px0 + 2*c + dx
				if px >= d.width {
					continue
				}
				if d.pixels[row+px]&1 != 0 {
					collided = true
				}
				d.pixels[row+px] ^= 1
			}
		}
		next := row + d.width
		copy(d.pixels[next+zone:next+end], d.pixels[row+zone:row+end])
	}
	if collided {
		return 1
	}
	return 0
}

func spriteRow(data []uint8, r, bytesPerRow int) uint16 {
	if bytesPerRow == 2 {
		return uint16(data[2*r])<<8 | uint16(data[2*r+1])
	}
	return uint16(data[r])
}

// Scroll shifts the selected planes, filling vacated pixels with zero.
// Vertical amounts are in rows; horizontal scrolls always move 4 pixels.
func (d *Display) Scroll(dir ScrollDirection, amount int) {
	s := d.scale()
	if d.quirks.LoresHalfPixel {
		s = 1
	}
	switch dir {
	case ScrollUp:
		d.shift(0, -amount*s)
	case ScrollDown:
		d.shift(0, amount*s)
	case ScrollLeft:
		d.shift(-4*s, 0)
	case ScrollRight:
		d.shift(4*s, 0)
	}
}

func (d *Display) shift(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	out := make([]uint8, len(d.pixels))
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			idx := y*d.width + x
			out[idx] = d.pixels[idx] &^ d.planes
			sx, sy := x-dx, y-dy
			if sx >= 0 && sx < d.width && sy >= 0 && sy < d.height {
				out[idx] |= d.pixels[sy*d.width+sx] & d.planes
			}
		}
	}
	d.pixels = out
}

// Frame returns a copy of the surface
func (d *Display) Frame() Frame {
	return Frame{
		Width:  d.width,
		Height: d.height,
		Hires:  d.hires,
		Pixels: append([]uint8(nil), d.pixels...),
	}
}
