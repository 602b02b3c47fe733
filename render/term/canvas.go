package term

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/notehunt/game/render"
)

// ColumnsPerUnit is how many terminal columns one surface unit spans. Terminal
// cells are about twice as tall as they are wide, so two columns per unit keep
// the board roughly square.
const ColumnsPerUnit = 2

// Canvas implements render.Canvas on a tcell screen. Images cannot be shown,
// so DrawImage always reports the asset as missing.
type Canvas struct {
	screen tcell.Screen
}

var _ render.Canvas = (*Canvas)(nil)

// NewCanvas creates a canvas on screen
func NewCanvas(screen tcell.Screen) *Canvas {
	return &Canvas{screen: screen}
}

// Size returns the surface size in units
func (c *Canvas) Size() (float64, float64) {
	w, h := c.screen.Size()
	return float64(w / ColumnsPerUnit), float64(h)
}

// Clear paints every cell with the background color
func (c *Canvas) Clear(clr color.Color) {
	c.screen.SetStyle(tcell.StyleDefault.Background(toColor(clr)))
	c.screen.Clear()
}

// FillRect paints the cells covered by the rectangle, blending translucent
// colors with what is already there
func (c *Canvas) FillRect(x, y, w, h float64, clr color.Color) {
	x0, y0 := c.column(x), int(math.Round(y))
	x1, y1 := c.column(x+w), int(math.Round(y+h))
	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col++ {
			c.paint(col, row, clr)
		}
	}
}

// FillCircle paints every cell whose center lies inside the circle. A circle
// smaller than a cell still paints the cell holding its center.
func (c *Canvas) FillCircle(cx, cy, r float64, clr color.Color) {
	x0, x1 := c.column(cx-r), c.column(cx+r)
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	painted := false
	for row := y0; row <= y1; row++ {
		for col := x0; col <= x1; col++ {
			ux := (float64(col) + 0.5) / ColumnsPerUnit
			uy := float64(row) + 0.5
			if (ux-cx)*(ux-cx)+(uy-cy)*(uy-cy) <= r*r {
				c.paint(col, row, clr)
				painted = true
			}
		}
	}
	if !painted {
		col := int(cx * ColumnsPerUnit)
		c.paint(col, int(cy), clr)
		c.paint(col+1, int(cy), clr)
	}
}

// DrawImage is unsupported on a terminal
func (c *Canvas) DrawImage(ref string, x, y, w, h, alpha float64) bool {
	return false
}

// DrawText writes text starting at the given unit position, keeping the
// background of each cell it covers
func (c *Canvas) DrawText(text string, x, y float64, clr color.Color) {
	col, row := c.column(x), int(math.Round(y))
	fg := toColor(clr)
	for _, r := range text {
		_, _, style, _ := c.screen.GetContent(col, row)
		_, bg, _ := style.Decompose()
		c.screen.SetContent(col, row, r, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		col++
	}
}

// MeasureText returns the size of text in units
func (c *Canvas) MeasureText(text string) (float64, float64) {
	return float64(len([]rune(text))) / ColumnsPerUnit, 1
}

func (c *Canvas) column(x float64) int {
	return int(math.Round(x * ColumnsPerUnit))
}

func (c *Canvas) paint(col, row int, clr color.Color) {
	w, h := c.screen.Size()
	if col < 0 || row < 0 || col >= w || row >= h {
		return
	}

	n := color.NRGBAModel.Convert(clr).(color.NRGBA)
	if n.A == 0 {
		return
	}

	mainc, _, style, _ := c.screen.GetContent(col, row)
	fg, bg, _ := style.Decompose()
	if n.A < 0xff {
		bg = blend(bg, n)
	} else {
		bg = tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B))
		mainc = ' '
	}
	c.screen.SetContent(col, row, mainc, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
}

// blend mixes src over dst by the alpha of src
func blend(dst tcell.Color, src color.NRGBA) tcell.Color {
	dr, dg, db := int32(0), int32(0), int32(0)
	if dst.Valid() {
		dr, dg, db = dst.RGB()
	}
	a := int32(src.A)
	mix := func(s uint8, d int32) int32 {
		return (int32(s)*a + d*(255-a)) / 255
	}
	return tcell.NewRGBColor(mix(src.R, dr), mix(src.G, dg), mix(src.B, db))
}

func toColor(clr color.Color) tcell.Color {
	n := color.NRGBAModel.Convert(clr).(color.NRGBA)
	return tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B))
}
