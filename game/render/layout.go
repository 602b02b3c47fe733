package render

import "github.com/wricardo/notehunt/game/engine"

// ControlsRatio is the height of the on-screen button strip relative to the board
const ControlsRatio = 0.25

// Controls are the directional buttons in the order they are laid out
var Controls = []string{engine.Left, engine.Up, engine.Down, engine.Right}

// Layout maps the engine's logical pixel space onto a surface
type Layout struct {
	Board    Rect
	Scale    float64 // surface pixels per logical pixel
	Cell     float64 // surface pixels per grid cell
	Buttons  map[string]Rect
	GridSize int
}

// NewLayout fits a gridSize board of tileSize logical tiles into a surface,
// centered, optionally reserving a strip of direction buttons under it.
func NewLayout(gridSize, tileSize int, width, height float64, controls bool) Layout {
	boardH := height
	if controls {
		boardH = height / (1 + ControlsRatio)
	}
	side := width
	if boardH < side {
		side = boardH
	}
	if side < 0 {
		side = 0
	}

	logical := float64(gridSize * tileSize)
	l := Layout{
		Board:    Rect{X: (width - side) / 2, Y: 0, W: side, H: side},
		Scale:    side / logical,
		Cell:     side / float64(gridSize),
		GridSize: gridSize,
	}
	if !controls {
		l.Board.Y = (height - side) / 2
		return l
	}

	strip := side * ControlsRatio
	size := strip * 0.7
	gap := strip * 0.15
	total := float64(len(Controls))*size + float64(len(Controls)-1)*gap
	x := (width - total) / 2
	y := l.Board.Y + side + (strip-size)/2

	l.Buttons = make(map[string]Rect, len(Controls))
	for _, dir := range Controls {
		l.Buttons[dir] = Rect{X: x, Y: y, W: size, H: size}
		x += size + gap
	}
	return l
}

// LayoutFor fits the board of gs into the canvas
func LayoutFor(gs *engine.GameState, c Canvas, controls bool) Layout {
	w, h := c.Size()
	return NewLayout(gs.GridSize, gs.TileSize, w, h, controls)
}

// CellRect returns the surface rectangle of a grid cell
func (l Layout) CellRect(x, y int) Rect {
	return Rect{
		X: l.Board.X + float64(x)*l.Cell,
		Y: l.Board.Y + float64(y)*l.Cell,
		W: l.Cell,
		H: l.Cell,
	}
}

// ToSurface converts a logical pixel position to surface pixels
func (l Layout) ToSurface(lx, ly float64) (float64, float64) {
	return l.Board.X + lx*l.Scale, l.Board.Y + ly*l.Scale
}

// ButtonAt returns the direction whose button contains the point
func (l Layout) ButtonAt(x, y float64) (string, bool) {
	for _, dir := range Controls {
		if r, ok := l.Buttons[dir]; ok && r.Contains(x, y) {
			return dir, true
		}
	}
	return "", false
}

// PopupGeometry is where the parts of the note popup sit on the surface
type PopupGeometry struct {
	Panel   Rect
	Photo   Rect
	Message Rect
	Close   Rect
}

// NewPopupGeometry centers the popup over the board
func NewPopupGeometry(l Layout) PopupGeometry {
	b := l.Board
	panel := Rect{X: b.X + b.W*0.1, Y: b.Y + b.H*0.08, W: b.W * 0.8, H: b.H * 0.84}
	pad := panel.W * 0.05

	photo := Rect{X: panel.X + pad, Y: panel.Y + pad, W: panel.W - 2*pad, H: panel.H * 0.55}
	message := Rect{X: photo.X, Y: photo.Y + photo.H + pad, W: photo.W, H: panel.H * 0.2}

	closeW, closeH := panel.W*0.3, panel.H*0.09
	closeBtn := Rect{
		X: panel.X + (panel.W-closeW)/2,
		Y: panel.Y + panel.H - pad - closeH,
		W: closeW,
		H: closeH,
	}

	return PopupGeometry{Panel: panel, Photo: photo, Message: message, Close: closeBtn}
}
