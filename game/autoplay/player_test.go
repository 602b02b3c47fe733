package autoplay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/notehunt/api"
	"github.com/wricardo/notehunt/assets"
	"github.com/wricardo/notehunt/game/config"
	"github.com/wricardo/notehunt/game/service"
	"github.com/wricardo/notehunt/game/session"
)

func newTestServer(t *testing.T) (*httptest.Server, service.GameService) {
	t.Helper()
	gameService := service.NewGameService(session.NewManager(), config.NewEmbeddedManager(assets.Configs()))
	server := httptest.NewServer(api.NewServer(gameService, nil, api.Options{}))
	t.Cleanup(server.Close)
	return server, gameService
}

func TestPlayQuickConfig(t *testing.T) {
	server, gameService := newTestServer(t)

	player := NewPlayer(NewClient(server.URL+"/"), Options{ConfigID: "quick"})
	sum, err := player.Play(context.Background())
	require.NoError(t, err)

	assert.True(t, sum.Completed)
	assert.Equal(t, 3, sum.Notes)
	// (2,2) -> (4,2) -> (0,0) -> (2,4)
	assert.Equal(t, 14, sum.Moves)
	assert.Positive(t, sum.Advances)

	state, err := gameService.GetGameState(context.Background(), sum.SessionID)
	require.NoError(t, err)
	assert.False(t, state.Carousel.Visible, "carousel should be closed")
	assert.Equal(t, 3, state.NotesCollected)
}

func TestPlayKeepCarousel(t *testing.T) {
	server, _ := newTestServer(t)
	client := NewClient(server.URL)

	sum, err := NewPlayer(client, Options{ConfigID: "quick", KeepCarousel: true}).Play(context.Background())
	require.NoError(t, err)
	require.True(t, sum.Completed)

	state, err := client.State(context.Background(), sum.SessionID)
	require.NoError(t, err)
	assert.True(t, state.Carousel.Visible)
}

func TestPlayClassicRandomLayout(t *testing.T) {
	server, _ := newTestServer(t)

	sum, err := NewPlayer(NewClient(server.URL), Options{ConfigID: "classic", AdvanceStep: time.Second}).Play(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Completed)
	assert.Equal(t, 6, sum.Notes)
}

func TestPlayResumeAndReset(t *testing.T) {
	server, _ := newTestServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	info, err := client.CreateSession(ctx, "quick")
	require.NoError(t, err)

	// Collect the first note by hand, leaving the popup open
	result, err := client.BulkMove(ctx, info.ID, []string{"right", "right"})
	require.NoError(t, err)
	require.Equal(t, "note_collected", result.StopReasonCode)

	sum, err := NewPlayer(client, Options{SessionID: info.ID}).Play(ctx)
	require.NoError(t, err)
	assert.Equal(t, info.ID, sum.SessionID)
	assert.Equal(t, 12, sum.Moves, "resumed run only walks the remaining legs")

	sum, err = NewPlayer(client, Options{SessionID: info.ID, Reset: true}).Play(ctx)
	require.NoError(t, err)
	assert.True(t, sum.Completed)
	assert.Equal(t, 14, sum.Moves)
}

func TestPlayMaxSteps(t *testing.T) {
	server, _ := newTestServer(t)

	sum, err := NewPlayer(NewClient(server.URL), Options{ConfigID: "quick", MaxSteps: 2}).Play(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStuck))
	assert.Equal(t, 2, sum.Steps)
	assert.False(t, sum.Completed)
}

func TestPlayCancelled(t *testing.T) {
	server, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	player := NewPlayer(NewClient(server.URL), Options{ConfigID: "quick", Delay: time.Hour})
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	sum, err := player.Play(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotEmpty(t, sum.SessionID)
}

func TestClientErrors(t *testing.T) {
	server, _ := newTestServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	_, err := client.State(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = client.CreateSession(ctx, "nope")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	info, err := client.CreateSession(ctx, "")
	require.NoError(t, err)

	_, err = client.ClosePopup(ctx, info.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	move, err := client.Move(ctx, info.ID, "up")
	require.NoError(t, err)
	assert.False(t, move.Success, "classic starts at (0,0)")

	_, err = NewClient("http://127.0.0.1:1").State(ctx, info.ID)
	require.Error(t, err)
}
