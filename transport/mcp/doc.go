// Package mcp exposes Note Hunt to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// a running API server, and the JSON reply is rendered as plain text with the
// board drawn the same way as GET /api/sessions/{id}/grid.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board, active note, popup and carousel phase
//   - move, bulk_move: settled moves, bulk stops on collection
//   - close_popup, close_carousel, advance: drive the presentation
//   - reset_game, move_history, list_configs, game_instructions
//
// Transport Modes:
//   - Stdio: Client.ServeStdio, used by "notehunt mcp"
//   - HTTP: Client.HTTPHandler mounted at /mcp by "notehunt serve"
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal().Err(err).Msg("mcp stdio")
//	}
package mcp
