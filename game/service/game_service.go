package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/notehunt/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknownAction   = errors.New("unknown action")
)

// Actions accepted by HandleAction
const (
	ActionMove          = "move"
	ActionClosePopup    = "close_popup"
	ActionCloseCarousel = "close_carousel"
	ActionReset         = "reset"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, settle bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error)
	ClosePopup(ctx context.Context, sessionID string) (*ActionResult, error)
	CloseCarousel(ctx context.Context, sessionID string) (*ActionResult, error)
	Advance(ctx context.Context, sessionID string, d time.Duration) (*ActionResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)
	HandleAction(ctx context.Context, sessionID, action, direction string) (*ActionResult, error)

	// Frame loop
	Tick(ctx context.Context, dt time.Duration) []SessionUpdate

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	GetGrid(ctx context.Context, sessionID string) ([]string, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, configID string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
