package main

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/render"
	ebitenr "github.com/wricardo/notehunt/render/ebiten"
)

// input is what the player did on one frame
type input struct {
	dir     string
	confirm bool // Enter or Space
	pointer bool // click or touch released this frame
	px, py  float64
	reset   bool
	music   bool
	quit    bool
}

// Game is the local desktop client. It owns an engine and steps it once per
// ebiten tick.
type Game struct {
	engine      *engine.GameEngine
	images      *ebitenr.ImageCache
	music       *ebitenr.Music
	playerImage string
	width       int
	height      int
}

// NewGame wraps eng. images and music may be nil.
func NewGame(eng *engine.GameEngine, images *ebitenr.ImageCache, music *ebitenr.Music) *Game {
	return &Game{
		engine:      eng,
		images:      images,
		music:       music,
		playerImage: eng.GetConfig().PlayerImage,
		width:       windowSize,
		height:      windowSize + int(windowSize*render.ControlsRatio),
	}
}

// Update reads input, applies it and advances the engine by one frame
func (g *Game) Update() error {
	in := readInput()
	if in.quit {
		return ebiten.Termination
	}
	g.apply(in)
	g.engine.Update(engine.FrameTime)
	g.logEvents()
	return nil
}

// Draw renders the current state
func (g *Game) Draw(screen *ebiten.Image) {
	render.DrawFrame(ebitenr.NewCanvas(screen, g.images), g.engine.GetState(), render.Options{
		PlayerImage: g.playerImage,
		Controls:    true,
		Status:      true,
	})
}

// Layout keeps the surface the size of the window
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *Game) layout() render.Layout {
	gs := g.engine.GetState()
	return render.NewLayout(gs.GridSize, gs.TileSize, float64(g.width), float64(g.height), true)
}

// apply maps one frame of input onto the engine. Moves are ignored by the
// engine while a slide, popup or carousel is in progress.
func (g *Game) apply(in input) {
	if in.music && g.music != nil {
		playing := g.music.Toggle()
		log.Debug().Bool("playing", playing).Msg("music toggled")
	}
	if in.reset {
		g.engine.Reset()
		log.Info().Msg("game reset")
		return
	}

	gs := g.engine.GetState()
	if in.pointer {
		l := g.layout()
		if r, ok := render.CloseButton(l, gs); ok && r.Contains(in.px, in.py) {
			g.dismiss()
			return
		}
		if dir, ok := l.ButtonAt(in.px, in.py); ok {
			g.engine.Move(dir)
			return
		}
	}
	if in.confirm {
		g.dismiss()
		return
	}
	if in.dir != "" {
		g.engine.Move(in.dir)
	}
}

// dismiss closes whichever overlay accepts it
func (g *Game) dismiss() {
	var err error
	if g.engine.GetState().Carousel.Visible {
		err = g.engine.CloseCarousel()
	} else {
		err = g.engine.ClosePopup()
	}
	if err != nil && !errors.Is(err, engine.ErrPopupNotDismissable) {
		log.Debug().Err(err).Msg("dismiss ignored")
	}
}

func (g *Game) logEvents() {
	for _, ev := range g.engine.DrainEvents() {
		switch ev.Type {
		case engine.EventNoteCollected, engine.EventNoteActivated, engine.EventCarouselStarted:
			log.Info().Str("event", string(ev.Type)).Int("note", ev.NoteIndex+1).Msg(ev.Message)
		default:
			log.Debug().Str("event", string(ev.Type)).Int("note", ev.NoteIndex+1).Msg(ev.Message)
		}
	}
}

var keyDirections = []struct {
	keys []ebiten.Key
	dir  string
}{
	{[]ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyW}, engine.Up},
	{[]ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyS}, engine.Down},
	{[]ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA}, engine.Left},
	{[]ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD}, engine.Right},
}

func readInput() input {
	var in input
	for _, kd := range keyDirections {
		for _, k := range kd.keys {
			if inpututil.IsKeyJustPressed(k) {
				in.dir = kd.dir
			}
		}
	}
	in.confirm = inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace)
	in.reset = inpututil.IsKeyJustPressed(ebiten.KeyR)
	in.music = inpututil.IsKeyJustPressed(ebiten.KeyM)
	in.quit = inpututil.IsKeyJustPressed(ebiten.KeyEscape)

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		in.pointer, in.px, in.py = true, float64(x), float64(y)
	}
	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		in.pointer, in.px, in.py = true, float64(x), float64(y)
	}
	return in
}
