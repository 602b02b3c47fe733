package main

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/render"
	"github.com/wricardo/notehunt/render/term"
)

// ui draws a source on a tcell screen and feeds it keyboard and mouse input
type ui struct {
	screen tcell.Screen
	src    source
	canvas *term.Canvas
	layout render.Layout
}

func newUI(screen tcell.Screen, src source) *ui {
	screen.EnableMouse(tcell.MouseButtonEvents)
	return &ui{screen: screen, src: src, canvas: term.NewCanvas(screen)}
}

func (u *ui) draw() {
	gs := u.src.State()
	if gs == nil {
		return
	}
	u.layout = render.DrawFrame(u.canvas, gs, render.Options{Controls: true, Status: true})
	u.screen.Show()
}

// handle applies one event and reports whether the client should quit
func (u *ui) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		u.screen.Sync()
	case *tcell.EventKey:
		return u.key(ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return false
		}
		col, row := ev.Position()
		u.click(float64(col)/term.ColumnsPerUnit, float64(row))
	}
	return false
}

func (u *ui) key(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		u.src.Move(engine.Up)
	case tcell.KeyDown:
		u.src.Move(engine.Down)
	case tcell.KeyLeft:
		u.src.Move(engine.Left)
	case tcell.KeyRight:
		u.src.Move(engine.Right)
	case tcell.KeyEnter:
		u.src.Dismiss()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'w':
			u.src.Move(engine.Up)
		case 's':
			u.src.Move(engine.Down)
		case 'a':
			u.src.Move(engine.Left)
		case 'd':
			u.src.Move(engine.Right)
		case ' ':
			u.src.Dismiss()
		case 'r':
			u.src.Reset()
		}
	}
	return false
}

// click hit-tests a point in surface units against the last drawn layout
func (u *ui) click(x, y float64) {
	gs := u.src.State()
	if gs == nil {
		return
	}
	if r, ok := render.CloseButton(u.layout, gs); ok && r.Contains(x, y) {
		u.src.Dismiss()
		return
	}
	if dir, ok := u.layout.ButtonAt(x, y); ok {
		u.src.Move(dir)
	}
}

// run ticks and redraws at the engine frame rate until quit or ctx ends
func (u *ui) run(ctx context.Context) {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(engine.FrameTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok || u.handle(ev) {
				return
			}
		case <-ticker.C:
			u.src.Tick(engine.FrameTime)
			u.draw()
		}
	}
}
