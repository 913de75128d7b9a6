package framebuffer

import (
	"encoding/binary"
)

// RasterOp selects how paste_region combines bytes with the destination.
type RasterOp int

const (
	OpOverwrite RasterOp = iota
	OpXor
	OpOr
	OpAnd
)

// Framebuffer owns a width*height*4 BGRA pixel buffer and a shared
// palette pointer (pages within one screen mode share the same palette).
type Framebuffer struct {
	Width, Height int
	Pixels        []byte // BGRA, row-major
	Palette       *Palette
	LastX, LastY  int
}

func New(w, h int, pal *Palette) *Framebuffer {
	return &Framebuffer{Width: w, Height: h, Pixels: make([]byte, w*h*4), Palette: pal}
}

func (f *Framebuffer) offset(x, y int) int { return (y*f.Width + x) * 4 }

func (f *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < f.Width && y >= 0 && y < f.Height
}

// Clear fills every pixel with palette[c].
func (f *Framebuffer) Clear(c int) {
	b, g, r, a := f.Palette.ResolveColor(c)
	for i := 0; i < len(f.Pixels); i += 4 {
		f.Pixels[i] = b
		f.Pixels[i+1] = g
		f.Pixels[i+2] = r
		f.Pixels[i+3] = a
	}
}

// SetPixel bounds-checks silently and stores.
func (f *Framebuffer) SetPixel(x, y, c int) {
	if !f.inBounds(x, y) {
		return
	}
	b, g, r, a := f.Palette.ResolveColor(c)
	o := f.offset(x, y)
	f.Pixels[o], f.Pixels[o+1], f.Pixels[o+2], f.Pixels[o+3] = b, g, r, a
	f.LastX, f.LastY = x, y
}

// GetPixelRaw returns the raw BGRA quad at (x,y), used by PAINT's
// raw-color equivalence comparison.
func (f *Framebuffer) GetPixelRaw(x, y int) (b, g, r, a byte) {
	if !f.inBounds(x, y) {
		return 0, 0, 0, 0
	}
	o := f.offset(x, y)
	return f.Pixels[o], f.Pixels[o+1], f.Pixels[o+2], f.Pixels[o+3]
}

// DrawLine is Bresenham, endpoint-inclusive. Endpoints are
// canonicalized first so the same pixel set results regardless of
// direction.
func (f *Framebuffer) DrawLine(x1, y1, x2, y2, c int) {
	if x2 < x1 || (x2 == x1 && y2 < y1) {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
	}
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	x, y := x1, y1
	for {
		f.SetPixel(x, y, c)
		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// DrawBox draws a normalized rectangle; filled fills inclusive, else
// draws the four outline edges via DrawLine.
func (f *Framebuffer) DrawBox(x1, y1, x2, y2, c int, filled bool) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if filled {
		for y := y1; y <= y2; y++ {
			for x := x1; x <= x2; x++ {
				f.SetPixel(x, y, c)
			}
		}
		return
	}
	f.DrawLine(x1, y1, x2, y1, c)
	f.DrawLine(x1, y2, x2, y2, c)
	f.DrawLine(x1, y1, x1, y2, c)
	f.DrawLine(x2, y1, x2, y2, c)
}

// DrawCircle uses the midpoint circle algorithm (8-way symmetry) for a
// full circle with aspect 1; otherwise it walks a parametric ellipse/arc
// with at least max(rx,ry)*4 segments connecting points with DrawLine.
// The screen-space Y axis aspect compresses circles vertically: rx=r,
// ry=r*aspect.
func (f *Framebuffer) DrawCircle(cx, cy, r int, c int, startAngle, endAngle, aspect float64) {
	const fullCircle = 2 * 3.141592653589793
	full := aspect == 1.0 && (endAngle-startAngle >= fullCircle-1e-9)
	if full {
		f.midpointCircle(cx, cy, r, c)
		return
	}
	rx := float64(r)
	ry := float64(r) * aspect
	segments := int(maxFloat(rx, ry) * 4)
	if segments < 8 {
		segments = 8
	}
	step := (endAngle - startAngle) / float64(segments)
	px, py := cx+int(rx*cos(startAngle)), cy+int(ry*sin(startAngle))
	for i := 1; i <= segments; i++ {
		angle := startAngle + step*float64(i)
		nx, ny := cx+int(rx*cos(angle)), cy+int(ry*sin(angle))
		f.DrawLine(px, py, nx, ny, c)
		px, py = nx, ny
	}
}

func (f *Framebuffer) midpointCircle(cx, cy, r, c int) {
	x, y := r, 0
	err := 0
	for x >= y {
		f.plot8(cx, cy, x, y, c)
		y++
		if err <= 0 {
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
}

func (f *Framebuffer) plot8(cx, cy, x, y, c int) {
	f.SetPixel(cx+x, cy+y, c)
	f.SetPixel(cx+y, cy+x, c)
	f.SetPixel(cx-y, cy+x, c)
	f.SetPixel(cx-x, cy+y, c)
	f.SetPixel(cx-x, cy-y, c)
	f.SetPixel(cx-y, cy-x, c)
	f.SetPixel(cx+y, cy-x, c)
	f.SetPixel(cx+x, cy-y, c)
}

// FloodFill is the scanline flood-fill: at each seed, scan left and right
// within the color equivalence class, fill the span, push seeds above and
// below at each new-run start. Comparison uses raw BGRA, not palette
// index, so mixed direct-RGB and palette-filled regions stay distinct.
func (f *Framebuffer) FloodFill(x, y, fillColor, borderColor int) {
	fb, fg, fr, fa := f.Palette.ResolveColor(fillColor)
	bb, bg, br, ba := f.Palette.ResolveColor(borderColor)
	startB, startG, startR, startA := f.GetPixelRaw(x, y)
	if startB == bb && startG == bg && startR == br && startA == ba {
		return // seed already on the border
	}
	if startB == fb && startG == fg && startR == fr && startA == fa {
		return // fill == current short-circuits
	}

	type seed struct{ x, y int }
	stack := []seed{{x, y}}
	isBorder := func(px, py int) bool {
		pb, pg, pr, pa := f.GetPixelRaw(px, py)
		return pb == bb && pg == bg && pr == br && pa == ba
	}
	matchesSeed := func(px, py int) bool {
		pb, pg, pr, pa := f.GetPixelRaw(px, py)
		return pb == startB && pg == startG && pr == startR && pa == startA
	}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !f.inBounds(s.x, s.y) || isBorder(s.x, s.y) || !matchesSeed(s.x, s.y) {
			continue
		}
		left := s.x
		for left-1 >= 0 && !isBorder(left-1, s.y) && matchesSeed(left-1, s.y) {
			left--
		}
		right := s.x
		for right+1 < f.Width && !isBorder(right+1, s.y) && matchesSeed(right+1, s.y) {
			right++
		}
		aboveNew, belowNew := true, true
		for px := left; px <= right; px++ {
			f.SetPixel(px, s.y, fillColor)
			if s.y-1 >= 0 {
				if !isBorder(px, s.y-1) && matchesSeed(px, s.y-1) {
					if aboveNew {
						stack = append(stack, seed{px, s.y - 1})
						aboveNew = false
					}
				} else {
					aboveNew = true
				}
			}
			if s.y+1 < f.Height {
				if !isBorder(px, s.y+1) && matchesSeed(px, s.y+1) {
					if belowNew {
						stack = append(stack, seed{px, s.y + 1})
						belowNew = false
					}
				} else {
					belowNew = true
				}
			}
		}
	}
}

// CopyRegion returns the sprite wire form: two u16 LE dimension fields
// followed by one palette-index byte per pixel, row-major. PasteRegion
// consumes it byte-exact.
func (f *Framebuffer) CopyRegion(x1, y1, x2, y2 int) []byte {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	w := x2 - x1 + 1
	h := y2 - y1 + 1
	out := make([]byte, 4+w*h)
	binary.LittleEndian.PutUint16(out[0:2], uint16(w))
	binary.LittleEndian.PutUint16(out[2:4], uint16(h))
	pos := 4
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			out[pos] = f.nearestPaletteIndex(x, y)
			pos++
		}
	}
	return out
}

// nearestPaletteIndex finds the closest palette entry to the pixel at
// (x,y) by exact BGRA match, falling back to 0.
func (f *Framebuffer) nearestPaletteIndex(x, y int) byte {
	idx, _ := f.PaletteIndexAt(x, y)
	return idx
}

// PaletteIndexAt reports the palette index whose entry exactly matches
// the BGRA quad at (x,y); ok is false when the pixel carries a
// direct-RGB color with no palette entry (POINT then reports the packed
// value instead of an index).
func (f *Framebuffer) PaletteIndexAt(x, y int) (byte, bool) {
	b, g, r, a := f.GetPixelRaw(x, y)
	for i, col := range f.Palette {
		if col.B == b && col.G == g && col.R == r && col.A == a {
			return byte(i), true
		}
	}
	return 0, false
}

// PasteRegion overwrites, XORs, ORs, or ANDs the stored palette-indexed
// pixels onto the framebuffer at (x,y) with the matching raster op.
func (f *Framebuffer) PasteRegion(x, y int, data []byte, op RasterOp) {
	if len(data) < 4 {
		return
	}
	w := int(binary.LittleEndian.Uint16(data[0:2]))
	h := int(binary.LittleEndian.Uint16(data[2:4]))
	pos := 4
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			if pos >= len(data) {
				return
			}
			idx := int(data[pos])
			pos++
			px, py := x+col, y+row
			if !f.inBounds(px, py) {
				continue
			}
			switch op {
			case OpOverwrite:
				f.SetPixel(px, py, idx)
			case OpXor:
				cur := f.nearestPaletteIndex(px, py)
				f.SetPixel(px, py, int(cur)^idx)
			case OpOr:
				cur := f.nearestPaletteIndex(px, py)
				f.SetPixel(px, py, int(cur)|idx)
			case OpAnd:
				cur := f.nearestPaletteIndex(px, py)
				f.SetPixel(px, py, int(cur)&idx)
			}
		}
	}
}
