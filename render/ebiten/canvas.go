package ebiten

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/wricardo/notehunt/game/render"
)

// Debug font glyph size used by ebitenutil.DebugPrintAt
const (
	charWidth  = 6
	charHeight = 16
)

// Canvas implements render.Canvas on an ebiten image
type Canvas struct {
	dst    *ebiten.Image
	images *ImageCache
}

var _ render.Canvas = (*Canvas)(nil)

// NewCanvas creates a canvas drawing onto dst. images may be nil, in which
// case every DrawImage reports the asset as missing.
func NewCanvas(dst *ebiten.Image, images *ImageCache) *Canvas {
	return &Canvas{dst: dst, images: images}
}

// Size returns the surface size in pixels
func (c *Canvas) Size() (float64, float64) {
	b := c.dst.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Clear fills the whole surface
func (c *Canvas) Clear(clr color.Color) {
	c.dst.Fill(clr)
}

// FillRect draws a filled rectangle
func (c *Canvas) FillRect(x, y, w, h float64, clr color.Color) {
	vector.FillRect(c.dst, float32(x), float32(y), float32(w), float32(h), clr, false)
}

// FillCircle draws a filled circle
func (c *Canvas) FillCircle(cx, cy, r float64, clr color.Color) {
	vector.DrawFilledCircle(c.dst, float32(cx), float32(cy), float32(r), clr, true)
}

// DrawImage draws a cached asset stretched to the rectangle
func (c *Canvas) DrawImage(ref string, x, y, w, h, alpha float64) bool {
	if c.images == nil {
		return false
	}
	img, ok := c.images.Get(ref)
	if !ok {
		return false
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return false
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Filter = ebiten.FilterLinear
	c.dst.DrawImage(img, op)
	return true
}

// DrawText prints text with the debug font. The font is always white, so clr
// is ignored.
func (c *Canvas) DrawText(text string, x, y float64, clr color.Color) {
	ebitenutil.DebugPrintAt(c.dst, text, int(x), int(y))
}

// MeasureText returns the size of text in the debug font
func (c *Canvas) MeasureText(text string) (float64, float64) {
	return MeasureText(text)
}

// MeasureText returns the size of text in the debug font
func MeasureText(text string) (float64, float64) {
	return float64(len([]rune(text)) * charWidth), charHeight
}
