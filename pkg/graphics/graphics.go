// Package graphics is the screen-mode/page-flip façade over
// pkg/framebuffer: two equal pages, an active page all drawing targets,
// and a visual page presented through the display collaborator.
package graphics

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/antibyte/retrobasic/pkg/framebuffer"
)

// ScreenMode describes one entry of the screen-mode table.
type ScreenMode struct {
	Width, Height int
	ColorBits     int // 1,2,4,8 palette bits-per-pixel equivalent, or 24 for direct RGB
}

var Modes = map[int]ScreenMode{
	0:  {640, 200, 4},
	1:  {320, 200, 2},
	2:  {640, 200, 1},
	7:  {320, 200, 4},
	8:  {640, 200, 4},
	9:  {640, 350, 4},
	12: {640, 480, 4},
	13: {320, 200, 8},
	14: {640, 480, 8},
	15: {640, 480, 24},
	16: {800, 600, 8},
	17: {800, 600, 24},
	18: {1024, 768, 8},
	19: {1024, 768, 24},
}

// Facade holds two pages plus active/visual indices.
type Facade struct {
	Mode        int
	Pages       [2]*framebuffer.Framebuffer
	ActivePage  int
	VisualPage  int
	Palette     *framebuffer.Palette
	CursorRow   int
	CursorCol   int
}

func New() *Facade {
	f := &Facade{Palette: framebuffer.NewDefaultPalette()}
	f.SetScreen(0, 0, 0)
	return f
}

// SetScreen resizes pages to the mode's resolution and clears both. When
// only page indices change (same mode, already allocated) it is a fast
// page-flip with no reallocation.
func (f *Facade) SetScreen(mode int, active, visual int) {
	m, ok := Modes[mode]
	if !ok {
		m = Modes[0]
	}
	samePages := f.Mode == mode && f.Pages[0] != nil && f.Pages[0].Width == m.Width && f.Pages[0].Height == m.Height
	pageFlipOnly := samePages && (active != f.ActivePage || visual != f.VisualPage)
	f.Mode = mode
	if !samePages {
		f.Pages[0] = framebuffer.New(m.Width, m.Height, f.Palette)
		f.Pages[1] = framebuffer.New(m.Width, m.Height, f.Palette)
	} else if !pageFlipOnly {
		f.Pages[0].Clear(0)
		f.Pages[1].Clear(0)
	}
	f.ActivePage = active
	f.VisualPage = visual
	if !pageFlipOnly {
		f.CursorRow, f.CursorCol = 0, 0
	}
}

func (f *Facade) Active() *framebuffer.Framebuffer { return f.Pages[f.ActivePage] }
func (f *Facade) Visual() *framebuffer.Framebuffer { return f.Pages[f.VisualPage] }

// Render presents the visual page through the display collaborator as a
// BGRA snapshot.
func (f *Facade) Render(present func(bgra []byte, w, h int)) {
	v := f.Visual()
	present(v.Pixels, v.Width, v.Height)
}

// textRowHeight is the per-mode text-in-graphics row height convention:
// mode 9 -> 14, mode 12 -> 16, else 8.
func (f *Facade) textRowHeight() int {
	switch f.Mode {
	case 9:
		return 14
	case 12:
		return 16
	default:
		return 8
	}
}

// PutSprite composites a captured region onto the active page with the
// given raster op. The palette-indexed wire form stays byte-exact and is
// handled entirely in pkg/framebuffer.PasteRegion.
func (f *Facade) PutSprite(x, y int, data []byte, op framebuffer.RasterOp) {
	f.Active().PasteRegion(x, y, data, op)
}

// compositeRGBA copies a page's BGRA bytes pixel by pixel into an
// image.RGBA, giving Scale an image.Image it can hand to x/image/draw.
func compositeRGBA(fb *framebuffer.Framebuffer) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			b, g, r, a := fb.GetPixelRaw(x, y)
			dst.Set(x, y, color.RGBA{R: r, G: g, B: b, A: a})
		}
	}
	return dst
}

// Scale resamples a page into a new-sized RGBA image via
// draw.NearestNeighbor.
func Scale(fb *framebuffer.Framebuffer, w, h int) *image.RGBA {
	src := compositeRGBA(fb)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
