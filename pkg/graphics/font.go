package graphics

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/antibyte/retrobasic/pkg/framebuffer"
)

// pageImage adapts a framebuffer page to draw.Image so font.Drawer can
// rasterize glyphs directly onto it.
type pageImage struct {
	fb        *framebuffer.Framebuffer
	fgColor   int
}

func (p *pageImage) ColorModel() color.Model { return color.RGBAModel }
func (p *pageImage) Bounds() image.Rectangle { return image.Rect(0, 0, p.fb.Width, p.fb.Height) }

func (p *pageImage) At(x, y int) color.Color {
	b, g, r, a := p.fb.GetPixelRaw(x, y)
	return color.RGBA{R: r, G: g, B: b, A: a}
}

func (p *pageImage) Set(x, y int, c color.Color) {
	_, _, _, a := c.RGBA()
	if a > 0x7FFF {
		p.fb.SetPixel(x, y, p.fgColor)
	}
}

// PrintText rasterizes glyphs from basicfont.Face7x13 at the text
// cursor location, honoring the per-mode row-height convention:
// mode 9 -> 14, mode 12 -> 16, else 8. Character width is 8.
func (f *Facade) PrintText(s string, fgColor int) {
	rowHeight := f.textRowHeight()
	img := &pageImage{fb: f.Active(), fgColor: fgColor}
	face := basicfont.Face7x13

	for _, ch := range s {
		if ch == '\n' {
			f.CursorRow++
			f.CursorCol = 0
			continue
		}
		x := f.CursorCol * 8
		y := f.CursorRow*rowHeight + face.Ascent
		drawer := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
			Face: face,
			Dot:  fixed.P(x, y),
		}
		drawer.DrawString(string(ch))
		f.CursorCol++
		if (f.CursorCol+1)*8 >= f.Active().Width {
			f.CursorCol = 0
			f.CursorRow++
		}
	}
}
