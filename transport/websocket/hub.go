package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Time allowed for an inbound action to complete.
	actionTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is sent to clients
type Message struct {
	SessionID string              `json:"session_id"`
	Event     string              `json:"event,omitempty"`
	GameState *engine.GameState   `json:"game_state,omitempty"`
	Events    []service.GameEvent `json:"events,omitempty"`
	Data      interface{}         `json:"data,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// ClientMessage is an action sent by a client
type ClientMessage struct {
	Action    string `json:"action"`
	Direction string `json:"direction,omitempty"`
}

// ActionHandler applies client actions to a session
type ActionHandler interface {
	HandleAction(ctx context.Context, sessionID, action, direction string) (*service.ActionResult, error)
}

// Client represents a WebSocket client
type Client struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

type directMessage struct {
	client *Client
	msg    *Message
}

// Hub maintains the set of active clients and broadcasts messages. The client
// registry is only touched by the Run goroutine.
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Messages for every client of a session
	broadcast chan *Message

	// Messages for a single client
	direct chan directMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Client count queries
	counts chan countQuery

	actions ActionHandler
	quit    chan struct{}
}

type countQuery struct {
	sessionID string
	reply     chan int
}

// NewHub creates a new WebSocket hub. actions may be nil for a broadcast-only
// hub.
func NewHub(actions ActionHandler) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		direct:     make(chan directMessage, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan countQuery),
		actions:    actions,
		quit:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and returns when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.quit)
		for _, clients := range h.sessions {
			for client := range clients {
				h.unregisterClient(client)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case d := <-h.direct:
			h.sendDirect(d)

		case q := <-h.counts:
			q.reply <- len(h.sessions[q.sessionID])
		}
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID.
// initial, when set, is sent before any broadcast.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *engine.GameState) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		id:        uuid.NewString(),
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	if initial != nil {
		if data, err := json.Marshal(&Message{SessionID: sessionID, Event: "state", GameState: initial}); err == nil {
			client.send <- data
		}
	}

	select {
	case h.register <- client:
	case <-h.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Publish sends a session update to every client of the session
func (h *Hub) Publish(update service.SessionUpdate) {
	h.enqueue(&Message{
		SessionID: update.SessionID,
		Event:     update.Event,
		GameState: update.GameState,
		Events:    update.Events,
	})
}

// BroadcastToSession sends a game state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.enqueue(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     "state_update",
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// ClientCount returns the number of clients attached to a session
func (h *Hub) ClientCount(sessionID string) int {
	q := countQuery{sessionID: sessionID, reply: make(chan int, 1)}
	select {
	case h.counts <- q:
		return <-q.reply
	case <-h.quit:
		return 0
	}
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.quit:
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Debug().
		Str("session", client.sessionID).
		Str("client", client.id).
		Int("clients", len(h.sessions[client.sessionID])).
		Msg("websocket client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up empty sessions
			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			log.Debug().
				Str("session", client.sessionID).
				Str("client", client.id).
				Int("clients", len(clients)).
				Msg("websocket client unregistered")
		}
	}
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.sessions[message.SessionID]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("session", message.SessionID).Msg("failed to marshal broadcast message")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) sendDirect(d directMessage) {
	if !h.sessions[d.client.sessionID][d.client] {
		return
	}
	data, err := json.Marshal(d.msg)
	if err != nil {
		return
	}
	select {
	case d.client.send <- data:
	default:
		h.unregisterClient(d.client)
	}
}

// handle applies one inbound message and fans the result out
func (c *Client) handle(raw []byte) {
	var in ClientMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		c.reply(&Message{SessionID: c.sessionID, Event: "error", Error: "invalid message"})
		return
	}
	if c.hub.actions == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	result, err := c.hub.actions.HandleAction(ctx, c.sessionID, in.Action, in.Direction)
	if err != nil {
		log.Debug().Err(err).Str("session", c.sessionID).Str("action", in.Action).Msg("websocket action rejected")
		c.reply(&Message{SessionID: c.sessionID, Event: "error", Error: err.Error()})
		return
	}

	event := result.Action
	if n := len(result.Events); n > 0 {
		event = result.Events[n-1].Type
	}
	c.hub.Publish(service.SessionUpdate{
		SessionID: c.sessionID,
		Event:     event,
		GameState: result.GameState,
		Events:    result.Events,
	})
}

func (c *Client) reply(msg *Message) {
	select {
	case c.hub.direct <- directMessage{client: c, msg: msg}:
	case <-c.hub.quit:
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("client", c.id).Msg("websocket read error")
			}
			break
		}
		c.handle(raw)
	}
}

// writePump pumps messages from the hub to the WebSocket connection. Each
// message is its own frame so clients can parse them independently.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
