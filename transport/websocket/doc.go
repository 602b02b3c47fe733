// Package websocket provides WebSocket transport for Note Hunt.
//
// The websocket package implements:
//   - Session-scoped broadcast of state and engine events
//   - Inbound player actions forwarded to an ActionHandler
//   - Connection lifecycle management with ping/pong keepalive
//
// Architecture:
//
// A central Hub owns the client registry. Only the goroutine running Hub.Run
// reads or writes it; everything else (Publish, ServeWS, client pumps) talks
// to the hub through channels. Each connection has a read pump and a write
// pump goroutine.
//
// Message Protocol:
//
// Messages are JSON, one per frame:
//   - Incoming: {"action": "move", "direction": "up"}, {"action": "close_popup"},
//     {"action": "close_carousel"}, {"action": "reset"}
//   - Outgoing: {"session_id", "event", "game_state", "events"}; rejected
//     actions get {"event": "error", "error": "..."} on the sending connection
//
// Usage:
//
//	hub := websocket.NewHub(gameService)
//	go hub.Run(ctx)
//
//	runner := loop.NewRunner(gameService, hub, 30)
//	go runner.Run(ctx)
//
//	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), nil)
//	})
package websocket
