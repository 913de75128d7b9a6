package basic

import (
	"strconv"
	"strings"

	"github.com/antibyte/retrobasic/pkg/framebuffer"
	"github.com/antibyte/retrobasic/pkg/logger"
)

// Graphics-bearing statement executors. Drawing delegates to
// pkg/framebuffer through the pkg/graphics façade.

const twoPi = 2 * 3.141592653589793

func (it *Interp) evalInt(e Expr, def int) (int, error) {
	if e == nil {
		return def, nil
	}
	v, err := it.evalExpr(e)
	if err != nil {
		return 0, err
	}
	n, err := toNumber(it, v)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (it *Interp) evalFloat(e Expr, def float64) (float64, error) {
	if e == nil {
		return def, nil
	}
	v, err := it.evalExpr(e)
	if err != nil {
		return 0, err
	}
	return toNumber(it, v)
}

// present snapshots the visual page out to the display collaborator.
func (it *Interp) present() {
	if it.display != nil && it.display.IsValid() {
		it.Graphics.Render(it.display.Present)
	}
}

func (it *Interp) execScreen(st *ScreenStmt) error {
	mode, err := it.evalInt(st.Mode, 0)
	if err != nil {
		return err
	}
	active, err := it.evalInt(st.ActivePage, 0)
	if err != nil {
		return err
	}
	visual, err := it.evalInt(st.VisualPage, 0)
	if err != nil {
		return err
	}
	if active < 0 || active > 1 || visual < 0 || visual > 1 {
		return NewRuntimeError(ErrCodeIllegalFunctionCall, "Illegal function call", it.currentLine())
	}
	it.Graphics.SetScreen(mode, active, visual)
	logger.Debug(logger.AreaGraphics, "screen mode %d active=%d visual=%d", mode, active, visual)
	if it.display != nil {
		v := it.Graphics.Visual()
		it.display.Initialize(v.Width, v.Height)
	}
	it.present()
	return nil
}

func (it *Interp) execColor(st *ColorStmt) error {
	fg, err := it.evalInt(st.Fg, it.fgColor)
	if err != nil {
		return err
	}
	bg, err := it.evalInt(st.Bg, it.bgColor)
	if err != nil {
		return err
	}
	it.fgColor = fg
	it.bgColor = bg
	return nil
}

func (it *Interp) execLocate(st *LocateStmt) error {
	row, err := it.evalInt(st.Row, it.Graphics.CursorRow+1)
	if err != nil {
		return err
	}
	col, err := it.evalInt(st.Col, it.Graphics.CursorCol+1)
	if err != nil {
		return err
	}
	if row < 1 || col < 1 {
		return NewRuntimeError(ErrCodeIllegalFunctionCall, "Illegal function call", it.currentLine())
	}
	it.Graphics.CursorRow = row - 1
	it.Graphics.CursorCol = col - 1
	return nil
}

func (it *Interp) execPset(st *PsetStmt) error {
	x, err := it.evalInt(st.X, 0)
	if err != nil {
		return err
	}
	y, err := it.evalInt(st.Y, 0)
	if err != nil {
		return err
	}
	def := it.fgColor
	if st.Reset {
		def = it.bgColor
	}
	c, err := it.evalInt(st.Color, def)
	if err != nil {
		return err
	}
	it.Graphics.Active().SetPixel(x, y, c)
	it.present()
	return nil
}

func (it *Interp) execLine(st *LineStmt) error {
	fb := it.Graphics.Active()
	x1, y1 := fb.LastX, fb.LastY
	var err error
	if st.HasP1 {
		x1, err = it.evalInt(st.X1, 0)
		if err != nil {
			return err
		}
		y1, err = it.evalInt(st.Y1, 0)
		if err != nil {
			return err
		}
	}
	x2, err := it.evalInt(st.X2, 0)
	if err != nil {
		return err
	}
	y2, err := it.evalInt(st.Y2, 0)
	if err != nil {
		return err
	}
	c, err := it.evalInt(st.Color, it.fgColor)
	if err != nil {
		return err
	}
	if st.Box {
		fb.DrawBox(x1, y1, x2, y2, c, st.Filled)
	} else {
		fb.DrawLine(x1, y1, x2, y2, c)
	}
	fb.LastX, fb.LastY = x2, y2
	it.present()
	return nil
}

func (it *Interp) execCircle(st *CircleStmt) error {
	cx, err := it.evalInt(st.CX, 0)
	if err != nil {
		return err
	}
	cy, err := it.evalInt(st.CY, 0)
	if err != nil {
		return err
	}
	r, err := it.evalInt(st.Radius, 0)
	if err != nil {
		return err
	}
	c, err := it.evalInt(st.Color, it.fgColor)
	if err != nil {
		return err
	}
	start, err := it.evalFloat(st.Start, 0)
	if err != nil {
		return err
	}
	end, err := it.evalFloat(st.End, twoPi)
	if err != nil {
		return err
	}
	aspect, err := it.evalFloat(st.Aspect, 1.0)
	if err != nil {
		return err
	}
	it.Graphics.Active().DrawCircle(cx, cy, r, c, start, end, aspect)
	it.present()
	return nil
}

func (it *Interp) execPaint(st *PaintStmt) error {
	x, err := it.evalInt(st.X, 0)
	if err != nil {
		return err
	}
	y, err := it.evalInt(st.Y, 0)
	if err != nil {
		return err
	}
	fill, err := it.evalInt(st.FillColor, it.fgColor)
	if err != nil {
		return err
	}
	border, err := it.evalInt(st.BorderColor, fill)
	if err != nil {
		return err
	}
	it.Graphics.Active().FloodFill(x, y, fill, border)
	it.present()
	return nil
}

func (it *Interp) execPalette(st *PaletteStmt) error {
	if st.Attr == nil {
		it.Graphics.Palette.Reset()
		it.present()
		return nil
	}
	attr, err := it.evalInt(st.Attr, 0)
	if err != nil {
		return err
	}
	c, err := it.evalInt(st.Color, 0)
	if err != nil {
		return err
	}
	if attr < 0 || attr > 255 {
		return NewRuntimeError(ErrCodeIllegalFunctionCall, "Illegal function call", it.currentLine())
	}
	it.Graphics.Palette.Set(attr, c)
	it.present()
	return nil
}

func (it *Interp) execGetGraphics(st *GetGraphicsStmt) error {
	x1, err := it.evalInt(st.X1, 0)
	if err != nil {
		return err
	}
	y1, err := it.evalInt(st.Y1, 0)
	if err != nil {
		return err
	}
	x2, err := it.evalInt(st.X2, 0)
	if err != nil {
		return err
	}
	y2, err := it.evalInt(st.Y2, 0)
	if err != nil {
		return err
	}
	it.sprites[normName(st.ArrayName)] = it.Graphics.Active().CopyRegion(x1, y1, x2, y2)
	return nil
}

func (it *Interp) execPutGraphics(st *PutGraphicsStmt) error {
	x, err := it.evalInt(st.X, 0)
	if err != nil {
		return err
	}
	y, err := it.evalInt(st.Y, 0)
	if err != nil {
		return err
	}
	data, ok := it.sprites[normName(st.ArrayName)]
	if !ok {
		return NewRuntimeError(ErrCodeIllegalFunctionCall, "Illegal function call", it.currentLine())
	}
	var op framebuffer.RasterOp
	switch st.Action {
	case "XOR":
		op = framebuffer.OpXor
	case "OR":
		op = framebuffer.OpOr
	case "AND":
		op = framebuffer.OpAnd
	default: // PSET / PRESET
		op = framebuffer.OpOverwrite
	}
	it.Graphics.PutSprite(x, y, data, op)
	it.present()
	return nil
}

// execDraw runs the DRAW macro subset: movement (U D L R E F G H), a
// blind/move prefix (B), absolute move (M x,y), color (C n), and scale
// (S n). This is the documented-partial surface; rotation and the rest
// of the macro language are not promised.
func (it *Interp) execDraw(st *DrawStmt) error {
	v, err := it.evalExpr(st.Cmd)
	if err != nil {
		return err
	}
	macro := strings.ToUpper(valueToString(v))
	fb := it.Graphics.Active()
	x, y := fb.LastX, fb.LastY
	color := it.fgColor
	scale := 1

	i := 0
	readNum := func() (int, bool) {
		start := i
		for i < len(macro) && (macro[i] == ' ' || macro[i] == ',') {
			i++
		}
		numStart := i
		if i < len(macro) && (macro[i] == '-' || macro[i] == '+') {
			i++
		}
		for i < len(macro) && macro[i] >= '0' && macro[i] <= '9' {
			i++
		}
		if numStart == i {
			i = start
			return 0, false
		}
		n, _ := strconv.Atoi(strings.TrimPrefix(macro[numStart:i], "+"))
		return n, true
	}

	blind := false
	for i < len(macro) {
		ch := macro[i]
		i++
		if ch == ' ' || ch == ';' {
			continue
		}
		if ch == 'B' {
			blind = true
			continue
		}
		step := func() int {
			n, ok := readNum()
			if !ok {
				n = 1
			}
			return n * scale
		}
		nx, ny := x, y
		switch ch {
		case 'U':
			ny -= step()
		case 'D':
			ny += step()
		case 'L':
			nx -= step()
		case 'R':
			nx += step()
		case 'E':
			d := step()
			nx += d
			ny -= d
		case 'F':
			d := step()
			nx += d
			ny += d
		case 'G':
			d := step()
			nx -= d
			ny += d
		case 'H':
			d := step()
			nx -= d
			ny -= d
		case 'M':
			mx, _ := readNum()
			my, _ := readNum()
			nx, ny = mx, my
		case 'C':
			n, _ := readNum()
			color = n
			continue
		case 'S':
			n, ok := readNum()
			if ok && n > 0 {
				scale = (n + 3) / 4 // classic S unit is quarter-pixels
				if scale < 1 {
					scale = 1
				}
			}
			continue
		default:
			continue
		}
		if blind {
			blind = false
		} else {
			fb.DrawLine(x, y, nx, ny, color)
		}
		x, y = nx, ny
		fb.LastX, fb.LastY = x, y
	}
	it.present()
	return nil
}
