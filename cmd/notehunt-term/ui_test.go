package main

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/notehunt/api"
	"github.com/wricardo/notehunt/assets"
	"github.com/wricardo/notehunt/game/config"
	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/render"
	"github.com/wricardo/notehunt/game/service"
	"github.com/wricardo/notehunt/game/session"
	"github.com/wricardo/notehunt/render/term"
	"github.com/wricardo/notehunt/transport/websocket"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	scr := tcell.NewSimulationScreen("")
	require.NoError(t, scr.Init())
	scr.SetSize(80, 40)
	t.Cleanup(scr.Fini)
	return scr
}

func quickSource(t *testing.T) *localSource {
	t.Helper()
	cfg, err := config.NewEmbeddedManager(assets.Configs()).Resolve("quick")
	require.NoError(t, err)
	eng, err := engine.NewEngineWithSeed(cfg, 1)
	require.NoError(t, err)
	return &localSource{engine: eng}
}

func press(u *ui, key tcell.Key, r rune) bool {
	return u.handle(tcell.NewEventKey(key, r, tcell.ModNone))
}

func settle(src *localSource) {
	src.engine.Settle()
}

func TestUI_Keys(t *testing.T) {
	src := quickSource(t)
	u := newUI(newScreen(t), src)

	assert.False(t, press(u, tcell.KeyRight, 0))
	settle(src)
	assert.False(t, press(u, tcell.KeyRune, 'w'))
	settle(src)
	assert.Equal(t, engine.Position{X: 3, Y: 1}, src.State().Player)

	assert.False(t, press(u, tcell.KeyRune, 'r'))
	assert.Equal(t, engine.Position{X: 2, Y: 2}, src.State().Player)

	assert.True(t, press(u, tcell.KeyRune, 'q'))
	assert.True(t, press(u, tcell.KeyEscape, 0))
}

func TestUI_DismissAndClick(t *testing.T) {
	src := quickSource(t)
	u := newUI(newScreen(t), src)

	press(u, tcell.KeyRight, 0)
	settle(src)
	press(u, tcell.KeyRight, 0)
	settle(src)
	require.True(t, src.State().Popup.Visible())

	src.engine.Advance(500 * time.Millisecond)
	u.draw()
	closeRect, ok := render.CloseButton(u.layout, src.State())
	require.True(t, ok)

	x, y := closeRect.Center()
	u.handle(tcell.NewEventMouse(int(x*term.ColumnsPerUnit), int(y), tcell.Button1, tcell.ModNone))
	assert.False(t, src.State().Popup.Visible())
	assert.Equal(t, 1, src.State().CurrentNote)

	u.draw()
	left := u.layout.Buttons[engine.Left]
	x, y = left.Center()
	u.handle(tcell.NewEventMouse(int(x*term.ColumnsPerUnit), int(y), tcell.Button1, tcell.ModNone))
	settle(src)
	assert.Equal(t, engine.Position{X: 3, Y: 2}, src.State().Player)
}

func TestUI_DrawShowsStatus(t *testing.T) {
	scr := newScreen(t)
	src := quickSource(t)
	u := newUI(scr, src)
	src.Tick(engine.FrameTime)
	u.draw()

	cells, w, h := scr.GetContents()
	require.Equal(t, 80*40, len(cells))
	assert.Equal(t, 80, w)
	assert.Equal(t, 40, h)
	assert.Greater(t, u.layout.Cell, 0.0)
}

func TestWSURL(t *testing.T) {
	got, err := wsURL("http://localhost:8080/", "abc")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws?session=abc", got)

	got, err = wsURL("https://example.com", "a b")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/ws?session=a+b", got)

	_, err = wsURL("ftp://example.com", "abc")
	assert.Error(t, err)
}

func TestRemoteSource(t *testing.T) {
	gameService := service.NewGameService(session.NewManager(), config.NewEmbeddedManager(assets.Configs()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := websocket.NewHub(gameService)
	go hub.Run(ctx)

	server := httptest.NewServer(api.NewServer(gameService, hub, api.Options{}))
	defer server.Close()

	info, err := gameService.CreateSession(ctx, "quick")
	require.NoError(t, err)

	src, err := dialRemote(server.URL, info.ID)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, engine.Position{X: 2, Y: 2}, src.State().Player)

	src.Move(engine.Down)
	require.Eventually(t, func() bool {
		return src.State().Player == engine.Position{X: 2, Y: 3}
	}, 2*time.Second, 10*time.Millisecond)

	// Nothing to dismiss yet
	src.Dismiss()
	require.Eventually(t, func() bool {
		return src.LastError() != ""
	}, 2*time.Second, 10*time.Millisecond)

	_, err = dialRemote(server.URL, "missing")
	assert.Error(t, err)
}
