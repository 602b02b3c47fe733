// Package api provides the HTTP REST API for Note Hunt.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "quick"}, empty for the default)
//   - GET /api/sessions - List sessions (sort=created|accessed, order=asc|desc, limit=N)
//   - GET /api/sessions/unified - Compare sessions (configId=..., sessionIds=a,b)
//   - GET /api/sessions/{id} - Session info
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game:
//   - GET /api/sessions/{id}/state - Current game state
//   - GET /api/sessions/{id}/grid - Text board, one string per row
//   - POST /api/sessions/{id}/move - {"direction": "up", "settle": true}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "left"]}
//   - POST /api/sessions/{id}/close-popup - Dismiss the note popup
//   - POST /api/sessions/{id}/close-carousel - Dismiss the final carousel
//   - POST /api/sessions/{id}/advance - Run the clock, {"ms": 400} or {"duration": "400ms"}
//   - POST /api/sessions/{id}/reset - Restart the game
//   - GET /api/sessions/{id}/history - Move history (page, limit, order)
//
// Configuration:
//   - GET /api/configs - List configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration (directory-backed managers only)
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket upgrade
//   - GET /assets/... - Images and audio
//   - GET / - Browser client
//
// Moves settle by default: the slide runs to completion inside the request,
// so the response already reflects a collected note. Pass "settle": false to
// leave the animation to the frame runner and watch it over the WebSocket.
//
// Errors are JSON objects, {"error": "message"}. Unknown sessions and
// configs are 404, popup or carousel operations out of phase are 409, and
// saving to the embedded configuration set is 403.
package api
