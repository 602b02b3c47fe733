package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/service"
)

type fakeActions struct {
	mu    sync.Mutex
	calls []ClientMessage
}

func (f *fakeActions) HandleAction(ctx context.Context, sessionID, action, direction string) (*service.ActionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ClientMessage{Action: action, Direction: direction})
	f.mu.Unlock()

	if action != service.ActionMove {
		return nil, errors.New("popup cannot be dismissed yet")
	}
	return &service.ActionResult{
		Action:    action,
		Success:   true,
		GameState: &engine.GameState{Player: engine.Position{X: 1, Y: 0}},
		Events:    []service.GameEvent{{Type: string(engine.EventMove)}},
	}, nil
}

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		id:        "test",
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels are nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Empty session should be removed")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// Unregistering twice must not panic on a closed channel
	hub.unregisterClient(client)
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub(nil)
	a := newTestClient(hub, "s1")
	b := newTestClient(hub, "s1")
	other := newTestClient(hub, "s2")
	hub.registerClient(a)
	hub.registerClient(b)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{
		SessionID: "s1",
		Event:     "note_collected",
		GameState: &engine.GameState{Player: engine.Position{X: 3, Y: 2}, NotesCollected: 1},
	})

	for _, c := range []*Client{a, b} {
		select {
		case data := <-c.send:
			var message Message
			if err := json.Unmarshal(data, &message); err != nil {
				t.Fatalf("Failed to unmarshal message: %v", err)
			}
			if message.Event != "note_collected" || message.GameState.Player.X != 3 {
				t.Errorf("Unexpected message %+v", message)
			}
		default:
			t.Error("Client in session did not receive the broadcast")
		}
	}

	select {
	case <-other.send:
		t.Error("Client of another session received the broadcast")
	default:
	}
}

func TestHubSlowClientDropped(t *testing.T) {
	hub := NewHub(nil)
	slow := &Client{id: "slow", hub: hub, sessionID: "s", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "s", Event: "tick"})

	if _, exists := hub.sessions["s"]; exists {
		t.Error("Slow client should be unregistered")
	}
}

func TestHubPublish(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub, "pub")
	hub.register <- client

	hub.Publish(service.SessionUpdate{
		SessionID: "pub",
		Event:     string(engine.EventMessageShown),
		GameState: &engine.GameState{Popup: engine.Popup{Phase: engine.PopupMessage}},
		Events:    []service.GameEvent{{Type: string(engine.EventMessageShown), Message: "hi"}},
	})

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatal(err)
		}
		if message.GameState.Popup.Phase != engine.PopupMessage {
			t.Errorf("Expected message phase, got %q", message.GameState.Popup.Phase)
		}
		if len(message.Events) != 1 || message.Events[0].Message != "hi" {
			t.Errorf("Events not forwarded: %+v", message.Events)
		}
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}

	if n := hub.ClientCount("pub"); n != 1 {
		t.Errorf("ClientCount() = %d, want 1", n)
	}
}

func TestHubStopsOnCancel(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	// Calls after shutdown return instead of blocking
	hub.Publish(service.SessionUpdate{SessionID: "x"})
	if n := hub.ClientCount("x"); n != 0 {
		t.Errorf("ClientCount() after stop = %d", n)
	}
}

func startServer(t *testing.T, hub *Hub) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		hub.ServeWS(w, r, sessionID, &engine.GameState{ConfigName: "initial"})
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return message
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn, _, err := websocket.DefaultDialer.Dial(startServer(t, hub)+"?session=ws-test", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	initial := readMessage(t, conn)
	if initial.Event != "state" || initial.GameState.ConfigName != "initial" {
		t.Errorf("Expected initial state, got %+v", initial)
	}
	if n := hub.ClientCount("ws-test"); n != 1 {
		t.Errorf("Expected 1 client in session, got %d", n)
	}

	hub.BroadcastToSession("ws-test", &engine.GameState{Player: engine.Position{X: 7, Y: 6}})
	update := readMessage(t, conn)
	if update.GameState.Player != (engine.Position{X: 7, Y: 6}) {
		t.Errorf("GameState not correctly received: %+v", update.GameState.Player)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount("ws-test") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Session should have been cleaned up after WebSocket close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketInboundActions(t *testing.T) {
	actions := &fakeActions{}
	hub := NewHub(actions)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn, _, err := websocket.DefaultDialer.Dial(startServer(t, hub)+"?session=play", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	readMessage(t, conn) // initial state

	if err := conn.WriteJSON(ClientMessage{Action: "move", Direction: "right"}); err != nil {
		t.Fatal(err)
	}
	moved := readMessage(t, conn)
	if moved.Event != string(engine.EventMove) || moved.GameState.Player.X != 1 {
		t.Errorf("Expected move broadcast, got %+v", moved)
	}

	if err := conn.WriteJSON(ClientMessage{Action: "close_popup"}); err != nil {
		t.Fatal(err)
	}
	rejected := readMessage(t, conn)
	if rejected.Event != "error" || rejected.Error == "" {
		t.Errorf("Expected error reply, got %+v", rejected)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if bad := readMessage(t, conn); bad.Error != "invalid message" {
		t.Errorf("Expected invalid message error, got %+v", bad)
	}

	actions.mu.Lock()
	defer actions.mu.Unlock()
	if len(actions.calls) != 2 || actions.calls[0].Direction != "right" {
		t.Errorf("Unexpected action calls: %+v", actions.calls)
	}
}
