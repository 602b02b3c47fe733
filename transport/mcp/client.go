package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/render"
	"github.com/wricardo/notehunt/game/service"
)

// Version is reported to MCP clients during initialization
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Note Hunt",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Note Hunt - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the player (@) across the board to each note (N) in turn. Every note opens a
popup with a photo and a message; close it to reveal the next note. After the last
note a carousel of all photos plays.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions / get_session: Inspect sessions
- game_state: Board, active note, popup and carousel state
- move: Single move (up/down/left/right) - requires intent explanation
- bulk_move: Several moves at once, stops when a note is collected
- close_popup: Dismiss the note popup once its message is visible
- advance: Let game time pass (popup timers, carousel)
- close_carousel: Dismiss the final carousel
- reset_game: Restart the game
- move_history: View past moves
- list_configs: List available configurations
- game_instructions: Full rules

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": sessionIDProperty(),
		},
		Required: []string{"session_id"},
	}
}

func emptySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: emptySchema(),
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with the board",
		InputSchema: sessionOnlySchema(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell. The slide finishes before the result is returned.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{engine.Up, engine.Down, engine.Left, engine.Right},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute multiple moves in sequence. Stops at the first rejected move or when a note is collected.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{engine.Up, engine.Down, engine.Left, engine.Right},
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "close_popup",
		Description: "Dismiss the note popup. Only accepted once the message is visible; use advance first if needed.",
		InputSchema: sessionOnlySchema(),
	}, c.handleClosePopup)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "close_carousel",
		Description: "Dismiss the final photo carousel",
		InputSchema: sessionOnlySchema(),
	}, c.handleCloseCarousel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance",
		Description: "Let game time pass so popup and carousel timers run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"ms": map[string]interface{}{
					"type":        "integer",
					"description": "Milliseconds to advance (default 500)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: sessionOnlySchema(),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: emptySchema(),
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: emptySchema(),
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio runs the tools over stdin/stdout until the input closes
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// HTTPHandler serves single JSON-RPC messages posted to it
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if response == nil {
			// Notifications have no reply
			w.WriteHeader(http.StatusAccepted)
			return
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Warn().Err(err).Msg("failed to write mcp response")
		}
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// intArg reads a JSON number argument, which arrives as float64
func intArg(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigID, formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		notes := ""
		if s.GameState != nil {
			notes = fmt.Sprintf(", Notes: %d/%d", s.GameState.NotesCollected, len(s.GameState.Notes))
		}
		fmt.Fprintf(&b, "- %s (Config: %s%s, Created: %s)\n",
			s.ID, s.ConfigID, notes, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	// intent is only there for the caller's benefit
	body := map[string]interface{}{
		"direction": direction,
		"settle":    true,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if s, ok := m.(string); ok {
			moves = append(moves, s)
		}
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), map[string]interface{}{"moves": moves}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleClosePopup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.action(ctx, request, "/close-popup", nil)
}

func (c *Client) handleCloseCarousel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.action(ctx, request, "/close-carousel", nil)
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ms := intArg(arguments(request), "ms", 500)
	if ms <= 0 {
		return mcp.NewToolResultError("ms must be positive"), nil
	}
	return c.action(ctx, request, "/advance", map[string]int{"ms": ms})
}

func (c *Client) action(ctx context.Context, request mcp.CallToolRequest, suffix string, body interface{}) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, suffix), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message + "\n\n" + formatGameState(response.State)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	query := url.Values{}
	query.Set("page", fmt.Sprint(intArg(args, "page", 1)))
	query.Set("limit", fmt.Sprint(intArg(args, "limit", 20)))

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/history?"+query.Encode()), nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(history.Moves) == 0 {
		return mcp.NewToolResultText("No moves in history"), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %d notes)\n  %s\n",
			cfg.ConfigID, cfg.Name, cfg.GridSize, cfg.GridSize, cfg.NoteCount, cfg.Description)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Note Hunt - Complete Instructions

GAME OBJECTIVE:
Find every hidden note, one at a time. Each note unlocks a photo and a short
message. After the last one a carousel shows all the photos.

BOARD LEGEND:
• @ - You
• N - The note you are looking for (only the active note is shown)
• . - Empty cell

Coordinates are (x, y) with (0,0) in the top-left corner. x grows to the right,
y grows downwards.

MOVEMENT:
• up, down, left, right move exactly one cell
• Moves off the board are rejected and recorded as out_of_bounds
• Moves while a popup or the carousel is open are rejected as paused
• The player slides between cells; the MCP move tools wait for the slide to end

COLLECTING A NOTE:
1. Stop on the cell of the active note
2. A popup opens and the game pauses
3. The photo fades in, then the message appears (about 0.4s)
4. Call close_popup once the message is visible (advance time first if the
   close is refused)
5. The next note appears somewhere else on the board

THE CAROUSEL:
After the final note closes, the carousel cycles through every photo with a
closing message. close_carousel hides it; the board stays open to wander.

STRATEGY:
• The shortest route is the Manhattan path: |dx| horizontal moves and |dy|
  vertical moves in any order
• bulk_move stops as soon as a note is collected, so sending a long route is safe
• Check game_state after each note; the next position is not known in advance

SESSION MANAGEMENT:
• Multiple sessions can run side by side, each with its own board
• Sessions are persisted and survive a server restart
• reset_game starts over; notes move unless the config pins them

Happy hunting!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Position: (%d,%d) | Notes: %d/%d | Moves: %d\n",
		state.Player.X, state.Player.Y, state.NotesCollected, len(state.Notes), state.TotalMoves)

	if note, ok := state.ActiveNote(); ok {
		fmt.Fprintf(&b, "Active note: #%d at (%d,%d)\n", note.Index+1, note.X, note.Y)
	}
	if state.Animation.Sliding {
		b.WriteString("Sliding...\n")
	}
	b.WriteString("\n")

	for _, row := range render.Rows(state) {
		b.WriteString(row)
		b.WriteString("\n")
	}

	switch {
	case state.Popup.Visible():
		fmt.Fprintf(&b, "\nPopup: note #%d (%s)", state.Popup.NoteIndex+1, state.Popup.Phase)
		if state.Popup.PhotoVisible {
			fmt.Fprintf(&b, " photo %s %.0f%%", state.Popup.Image, state.Popup.PhotoAlpha*100)
		}
		if state.Popup.Phase == engine.PopupMessage {
			fmt.Fprintf(&b, "\nMessage: %q\nUse close_popup to continue.", state.Popup.Message)
		} else {
			b.WriteString("\nUse advance to let the message appear.")
		}
	case state.Carousel.Visible:
		fmt.Fprintf(&b, "\nCarousel: %s (%d/%d)\n%s", state.Carousel.Image,
			state.Carousel.Index+1, len(state.Notes), state.Carousel.Text)
	case state.Completed:
		b.WriteString("\nAll notes found!")
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		if event.Message != "" {
			fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
		} else {
			fmt.Fprintf(b, "- %s\n", event.Type)
		}
	}
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		fmt.Fprintf(&b, "✗ Move failed (%s)\n", result.Reason)
	}

	if s := result.Step; s != nil {
		status := "✗"
		if s.Success {
			status = "✓"
		}
		fmt.Fprintf(&b, "Step: %s (%d,%d)→(%d,%d) %s", s.Dir, s.From.X, s.From.Y, s.To.X, s.To.Y, status)
		if s.Collected {
			fmt.Fprintf(&b, " collected note #%d", s.NoteIndex+1)
		}
		b.WriteString("\n")
	}

	formatEvents(&b, result.Events)
	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	configName := ""
	gridSize := 0
	if result.GameState != nil {
		configName = result.GameState.ConfigName
		gridSize = result.GameState.GridSize
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s • Grid: %dx%d\n", sessionID, configName, gridSize, gridSize)

	fmt.Fprintf(&b, "Executed %d/%d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}
	fmt.Fprintf(&b, "From (%d,%d) to (%d,%d), notes +%d\n",
		result.StartPos.X, result.StartPos.Y, result.EndPos.X, result.EndPos.Y, result.NotesDelta)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			status := "✓"
			if !s.Success {
				status = "✗ " + s.Reason
			}
			fmt.Fprintf(&b, "%d. %s (%d,%d)→(%d,%d) %s\n", s.Idx, s.Dir, s.From.X, s.From.Y, s.To.X, s.To.Y, status)
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\n")
		formatEvents(&b, result.Events)
	}

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", strings.Join(result.PossibleMoves, ","))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s\n", result.Action)
	formatEvents(&b, result.Events)
	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) • Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗ " + move.Reason
		}
		fmt.Fprintf(&b, "%d. %s (%d,%d)→(%d,%d) %s\n", move.MoveNumber, move.Action,
			move.FromPosition.X, move.FromPosition.Y, move.ToPosition.X, move.ToPosition.Y, status)
	}

	return b.String()
}
