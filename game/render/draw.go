package render

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/wricardo/notehunt/game/engine"
)

// Options controls what DrawFrame puts on the surface besides the board
type Options struct {
	PlayerImage string
	Controls    bool
	Status      bool
}

// DrawFrame renders a complete frame: board, player, controls, status line,
// then whichever overlay is visible. It returns the layout used so callers
// can hit-test input against it.
func DrawFrame(c Canvas, gs *engine.GameState, opts Options) Layout {
	l := LayoutFor(gs, c, opts.Controls)

	c.Clear(Background)
	DrawGrid(c, l, gs)
	DrawPlayer(c, l, gs, opts.PlayerImage)
	if opts.Controls {
		DrawControls(c, l)
	}
	if opts.Status {
		DrawStatus(c, l, gs)
	}
	DrawPopup(c, l, gs)
	DrawCarousel(c, l, gs)
	return l
}

// DrawGrid paints the checkerboard and the marker of the active note
func DrawGrid(c Canvas, l Layout, gs *engine.GameState) {
	for y := 0; y < gs.GridSize; y++ {
		for x := 0; x < gs.GridSize; x++ {
			tile := TileEven
			if (x+y)%2 == 1 {
				tile = TileOdd
			}
			r := l.CellRect(x, y)
			c.FillRect(r.X, r.Y, r.W, r.H, tile)
		}
	}

	note, ok := gs.ActiveNote()
	if !ok || note.Collected {
		return
	}
	cx, cy := l.CellRect(note.X, note.Y).Center()
	c.FillCircle(cx, cy, l.Cell/5, Marker)
}

// DrawPlayer draws the token at its animated position
func DrawPlayer(c Canvas, l Layout, gs *engine.GameState, image string) {
	x, y := l.ToSurface(gs.Animation.DrawX, gs.Animation.DrawY)
	if image != "" && c.DrawImage(image, x, y, l.Cell, l.Cell, 1) {
		return
	}
	c.FillCircle(x+l.Cell/2, y+l.Cell/2, l.Cell*0.35, PlayerColor)
}

// DrawControls draws the four direction buttons
func DrawControls(c Canvas, l Layout) {
	for _, dir := range Controls {
		r, ok := l.Buttons[dir]
		if !ok {
			continue
		}
		c.FillRect(r.X, r.Y, r.W, r.H, Button)
		drawCentered(c, r, arrow(dir), TextColor)
	}
}

// DrawStatus writes the current progress message above the board's bottom edge
func DrawStatus(c Canvas, l Layout, gs *engine.GameState) {
	text := gs.Message
	if text == "" {
		text = fmt.Sprintf("%d/%d notes", gs.NotesCollected, len(gs.Notes))
	}
	_, th := c.MeasureText(text)
	c.DrawText(text, l.Board.X+4, l.Board.Y+l.Board.H-th-4, TextColor)
}

// DrawPopup draws the note popup in its current phase
func DrawPopup(c Canvas, l Layout, gs *engine.GameState) {
	p := gs.Popup
	if !p.Visible() {
		return
	}

	w, h := c.Size()
	dim := Dim
	if p.Blur {
		dim = BlurDim
	}
	c.FillRect(0, 0, w, h, dim)

	g := NewPopupGeometry(l)
	c.FillRect(g.Panel.X, g.Panel.Y, g.Panel.W, g.Panel.H, Panel)

	if p.PhotoVisible {
		r := g.Photo.Scaled(p.PhotoScale)
		if !c.DrawImage(p.Image, r.X, r.Y, r.W, r.H, p.PhotoAlpha) {
			c.FillRect(r.X, r.Y, r.W, r.H, WithAlpha(Placeholder, p.PhotoAlpha))
		}
	}

	if p.Phase != engine.PopupMessage {
		return
	}
	drawWrapped(c, g.Message, p.Message, TextColor)
	if p.CloseVisible {
		c.FillRect(g.Close.X, g.Close.Y, g.Close.W, g.Close.H, Button)
		drawCentered(c, g.Close, "close", TextColor)
	}
}

// DrawCarousel draws the final carousel and its text
func DrawCarousel(c Canvas, l Layout, gs *engine.GameState) {
	cr := gs.Carousel
	if !cr.Visible {
		return
	}

	w, h := c.Size()
	c.FillRect(0, 0, w, h, BlurDim)

	g := NewPopupGeometry(l)
	c.FillRect(g.Panel.X, g.Panel.Y, g.Panel.W, g.Panel.H, Panel)
	if !c.DrawImage(cr.Image, g.Photo.X, g.Photo.Y, g.Photo.W, g.Photo.H, 1) {
		c.FillRect(g.Photo.X, g.Photo.Y, g.Photo.W, g.Photo.H, Placeholder)
		drawCentered(c, g.Photo, cr.Image, TextColor)
	}
	drawWrapped(c, g.Message, cr.Text, TextColor)

	c.FillRect(g.Close.X, g.Close.Y, g.Close.W, g.Close.H, Button)
	drawCentered(c, g.Close, "close", TextColor)
}

// CloseButton returns the dismiss control of whichever overlay currently
// accepts it
func CloseButton(l Layout, gs *engine.GameState) (Rect, bool) {
	if gs.Carousel.Visible || (gs.Popup.Phase == engine.PopupMessage && gs.Popup.CloseVisible) {
		return NewPopupGeometry(l).Close, true
	}
	return Rect{}, false
}

func drawCentered(c Canvas, r Rect, text string, clr color.Color) {
	tw, th := c.MeasureText(text)
	cx, cy := r.Center()
	c.DrawText(text, cx-tw/2, cy-th/2, clr)
}

func drawWrapped(c Canvas, r Rect, text string, clr color.Color) {
	lines := Wrap(c, text, r.W)
	_, lh := c.MeasureText("M")
	y := r.Y
	for _, line := range lines {
		if y+lh > r.Y+r.H && y != r.Y {
			break
		}
		tw, _ := c.MeasureText(line)
		c.DrawText(line, r.X+(r.W-tw)/2, y, clr)
		y += lh
	}
}

// Wrap breaks text into lines no wider than width on c. A single word wider
// than width gets a line of its own.
func Wrap(c Canvas, text string, width float64) []string {
	words := strings.Fields(text)
	var lines []string
	var line string
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if w, _ := c.MeasureText(candidate); w <= width || line == "" {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func arrow(dir string) string {
	switch dir {
	case engine.Up:
		return "^"
	case engine.Down:
		return "v"
	case engine.Left:
		return "<"
	case engine.Right:
		return ">"
	}
	return "?"
}
