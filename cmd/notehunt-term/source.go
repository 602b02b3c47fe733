package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/transport/websocket"
)

// source is where the terminal client gets its state and sends its actions
type source interface {
	State() *engine.GameState
	// Tick runs one frame of dt; remote sources are ticked by the server
	Tick(dt time.Duration)
	Move(dir string)
	Dismiss()
	Reset()
	Close() error
}

// localSource plays on an in-process engine
type localSource struct {
	engine *engine.GameEngine
}

func (s *localSource) State() *engine.GameState { return s.engine.GetState() }

func (s *localSource) Tick(dt time.Duration) {
	s.engine.Update(dt)
	for _, ev := range s.engine.DrainEvents() {
		log.Debug().Str("event", string(ev.Type)).Int("note", ev.NoteIndex+1).Msg(ev.Message)
	}
}

func (s *localSource) Move(dir string) { s.engine.Move(dir) }

func (s *localSource) Dismiss() {
	if s.engine.GetState().Carousel.Visible {
		_ = s.engine.CloseCarousel()
		return
	}
	_ = s.engine.ClosePopup()
}

func (s *localSource) Reset() { s.engine.Reset() }

func (s *localSource) Close() error { return nil }

// remoteSource mirrors a server session over its WebSocket
type remoteSource struct {
	conn *gws.Conn

	mu    sync.Mutex
	state *engine.GameState
	err   string
	done  chan struct{}
}

// wsURL turns an http(s) base URL into the session's WebSocket URL
func wsURL(base, sessionID string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	u.RawQuery = url.Values{"session": {sessionID}}.Encode()
	return u.String(), nil
}

// dialRemote connects to a session and waits for its first state
func dialRemote(base, sessionID string) (*remoteSource, error) {
	target, err := wsURL(base, sessionID)
	if err != nil {
		return nil, err
	}
	conn, resp, err := gws.DefaultDialer.Dial(target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s", target, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	s := &remoteSource{conn: conn, done: make(chan struct{})}
	var first websocket.Message
	if err := conn.ReadJSON(&first); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read initial state: %w", err)
	}
	if first.GameState == nil {
		conn.Close()
		return nil, errors.New("server sent no initial state")
	}
	s.state = first.GameState

	go s.read()
	return s, nil
}

func (s *remoteSource) read() {
	defer close(s.done)
	for {
		var msg websocket.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			log.Debug().Err(err).Msg("websocket closed")
			return
		}
		s.mu.Lock()
		if msg.GameState != nil {
			s.state = msg.GameState
		}
		s.err = msg.Error
		s.mu.Unlock()
	}
}

func (s *remoteSource) State() *engine.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError is the most recent rejection reported by the server
func (s *remoteSource) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *remoteSource) Tick(time.Duration) {}

func (s *remoteSource) send(action, dir string) {
	if err := s.conn.WriteJSON(websocket.ClientMessage{Action: action, Direction: dir}); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("send failed")
	}
}

func (s *remoteSource) Move(dir string) { s.send("move", dir) }

func (s *remoteSource) Dismiss() {
	if s.State().Carousel.Visible {
		s.send("close_carousel", "")
		return
	}
	s.send("close_popup", "")
}

func (s *remoteSource) Reset() { s.send("reset", "") }

func (s *remoteSource) Close() error {
	_ = s.conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, ""))
	return s.conn.Close()
}
