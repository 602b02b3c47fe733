package render

import "image/color"

// Canvas is the drawing surface a frame is rendered onto. Coordinates are
// surface pixels with the origin at the top left.
type Canvas interface {
	Size() (width, height float64)
	Clear(c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)

	// DrawImage draws the asset named ref stretched to the rectangle. It
	// returns false when the asset is not available, in which case the
	// caller draws a placeholder.
	DrawImage(ref string, x, y, w, h, alpha float64) bool

	DrawText(text string, x, y float64, c color.Color)
	MeasureText(text string) (width, height float64)
}

// Palette
var (
	TileEven    = color.NRGBA{R: 0x3a, G: 0x3a, B: 0x3a, A: 0xff}
	TileOdd     = color.NRGBA{R: 0x2e, G: 0x2e, B: 0x2e, A: 0xff}
	Marker      = color.NRGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
	PlayerColor = color.NRGBA{R: 0xff, G: 0x4d, B: 0x6d, A: 0xff}
	Background  = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}
	Dim         = color.NRGBA{A: 0x80}
	BlurDim     = color.NRGBA{A: 0xb0}
	Panel       = color.NRGBA{R: 0x22, G: 0x22, B: 0x2a, A: 0xf0}
	Placeholder = color.NRGBA{R: 0x55, G: 0x55, B: 0x66, A: 0xff}
	TextColor   = color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
	Button      = color.NRGBA{R: 0x44, G: 0x44, B: 0x55, A: 0xff}
)

// Rect is an axis-aligned rectangle in surface pixels
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the point lies inside the rectangle
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Center returns the midpoint of the rectangle
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Scaled returns the rectangle scaled by s around its center
func (r Rect) Scaled(s float64) Rect {
	cx, cy := r.Center()
	w, h := r.W*s, r.H*s
	return Rect{X: cx - w/2, Y: cy - h/2, W: w, H: h}
}

// WithAlpha returns c with its alpha multiplied by a
func WithAlpha(c color.Color, a float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	n.A = uint8(float64(n.A) * a)
	return n
}
