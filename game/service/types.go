package service

import (
	"time"

	"github.com/wricardo/notehunt/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigID       string             `json:"config_id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	Reason    string            `json:"reason"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
	Settled   bool              `json:"settled"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // Machine-friendly code: out_of_bounds|paused|invalid_direction|note_collected
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos   engine.Position `json:"start_pos"`
	EndPos     engine.Position `json:"end_pos"`
	NotesDelta int             `json:"notes_delta"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	Grid          []string `json:"grid,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx       int             `json:"idx"`
	Dir       string          `json:"dir"`
	From      engine.Position `json:"from"`
	To        engine.Position `json:"to"`
	Success   bool            `json:"success"`
	Reason    string          `json:"reason"`
	Collected bool            `json:"collected,omitempty"`
	NoteIndex int             `json:"note_index,omitempty"`
}

// ActionResult is the outcome of a popup, carousel or time operation
type ActionResult struct {
	Action    string            `json:"action"`
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // see engine.EventType
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
	NoteIndex int             `json:"note_index"`
	Image     string          `json:"image,omitempty"`
	Frame     int64           `json:"frame"`
}

// SessionUpdate carries the state of a session that changed during a tick
type SessionUpdate struct {
	SessionID string            `json:"session_id"`
	Event     string            `json:"event"`
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	GridSize    int    `json:"grid_size"`
	NoteCount   int    `json:"note_count"`
}
