package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session. The configuration is
// referenced by ID and reloaded on restore.
type PersistedSessionData struct {
	ID             string            `json:"id"`
	ConfigID       string            `json:"config_id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

func newPersistedData(session *service.Session) (*PersistedSessionData, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	return &PersistedSessionData{
		ID:             session.ID,
		ConfigID:       session.ConfigID,
		ConfigName:     session.Config.Name,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
	}, nil
}

func encodeSession(session *service.Session) ([]byte, error) {
	data, err := newPersistedData(session)
	if err != nil {
		return nil, err
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}
	return jsonData, nil
}

// restoreSession rebuilds a live session from its stored form
func restoreSession(jsonData []byte, configs service.ConfigManager) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.GameState == nil {
		return nil, fmt.Errorf("session %s has no game state", data.ID)
	}

	gameConfig := configs.GetDefault()
	if data.ConfigID != "" {
		cfg, err := configs.LoadConfig(data.ConfigID)
		if err != nil {
			return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigID, err)
		}
		gameConfig = cfg
	}

	gameEngine, err := engine.NewEngineWithSeed(gameConfig, data.GameState.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if err := gameEngine.SetState(data.GameState); err != nil {
		return nil, fmt.Errorf("failed to set game state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		ConfigID:       data.ConfigID,
		Engine:         gameEngine,
		Config:         gameConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
