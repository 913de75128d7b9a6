// Package framebuffer implements the pixel buffer, raster primitives,
// and 256-entry palette backing the graphics statements. The palette is
// an image/color.RGBA table rather than raw packed ints.
package framebuffer

import "image/color"

// DirectColorMarkerBit is set above bit 23 so palette indices (always
// <=255) can never collide with a direct-RGB packed value.
const DirectColorMarkerBit = 0x01000000

// Palette is the 256-entry default color table: indices 0-15 are the EGA
// palette, 16-231 a 6x6x6 RGB cube at step 51, 232-255 a grayscale ramp.
type Palette [256]color.RGBA

// egaBGR lists the default EGA palette entries in B,G,R byte order.
var egaBGR = [16][3]byte{
	{0x00, 0x00, 0x00}, {0xAA, 0x00, 0x00}, {0x00, 0xAA, 0x00}, {0xAA, 0xAA, 0x00},
	{0x00, 0x00, 0xAA}, {0xAA, 0x00, 0xAA}, {0x00, 0x55, 0xAA}, {0xAA, 0xAA, 0xAA},
	{0x55, 0x55, 0x55}, {0xFF, 0x55, 0x55}, {0x55, 0xFF, 0x55}, {0xFF, 0xFF, 0x55},
	{0x55, 0x55, 0xFF}, {0xFF, 0x55, 0xFF}, {0x55, 0xFF, 0xFF}, {0xFF, 0xFF, 0xFF},
}

// NewDefaultPalette builds the default 256-entry palette.
func NewDefaultPalette() *Palette {
	var pal Palette
	for i := 0; i < 16; i++ {
		b, g, r := egaBGR[i][0], egaBGR[i][1], egaBGR[i][2]
		pal[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
	}
	idx := 16
	steps := [6]byte{0, 51, 102, 153, 204, 255}
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				if idx > 231 {
					break
				}
				pal[idx] = color.RGBA{R: steps[r], G: steps[g], B: steps[b], A: 0xFF}
				idx++
			}
		}
	}
	for i := 232; i < 256; i++ {
		level := byte((i - 232) * 255 / 23)
		pal[i] = color.RGBA{R: level, G: level, B: level, A: 0xFF}
	}
	return &pal
}

// ResolveColor maps an incoming color integer to a BGRA quad: a value
// <=255 is a palette index; anything with the direct-color marker bit (or
// any bit beyond the low 24) set is a direct 24-bit BGR value pulled from
// the low 24 bits.
func (p *Palette) ResolveColor(c int) (b, g, r, a byte) {
	if c >= 0 && c <= 255 {
		col := p[c]
		return col.B, col.G, col.R, col.A
	}
	b = byte(c & 0xFF)
	g = byte((c >> 8) & 0xFF)
	r = byte((c >> 16) & 0xFF)
	return b, g, r, 0xFF
}

// Set remaps one palette entry to the BGRA expansion of the given color
// value (PALETTE statement).
func (p *Palette) Set(index int, c int) {
	if index < 0 || index > 255 {
		return
	}
	b, g, r, a := p.ResolveColor(c)
	p[index] = color.RGBA{R: r, G: g, B: b, A: a}
}

// Reset restores every entry to the default table.
func (p *Palette) Reset() {
	*p = *NewDefaultPalette()
}

// Rgb packs r,g,b into a direct-color value with the marker bit set:
// (r<<16)|(g<<8)|b | 0x01000000.
func Rgb(r, g, b int) int {
	return (r << 16) | (g << 8) | b | DirectColorMarkerBit
}
