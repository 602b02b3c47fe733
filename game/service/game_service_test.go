package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, configID string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngineWithSeed(config, 1)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		ConfigID:       configID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

// testConfig is a 5x5 board with three pinned notes:
//
//	@.N..
//	.....
//	..N..
//	.....
//	....N
func testConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:               "test",
		Description:        "Test configuration",
		GridSize:           5,
		NoteCount:          3,
		TileSize:           16,
		SlideSpeed:         4,
		PlayerStart:        engine.Position{X: 0, Y: 0},
		NotePositions:      []engine.Position{{X: 2, Y: 0}, {X: 2, Y: 2}, {X: 4, Y: 4}},
		PhotoDelayMS:       50,
		MessageDelayMS:     400,
		FadeMS:             300,
		CarouselIntervalMS: 1000,
		Messages:           []string{"one", "two", "three"},
		Images:             []string{"a.jpg", "b.jpg", "c.jpg"},
		FinalMessage:       "the end",
	}
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := testConfig()
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":    defaultConfig,
			"default": defaultConfig,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, fmt.Errorf("%s: %w", name, service.ErrConfigNotFound)
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			GridSize:    config.GridSize,
			NoteCount:   config.NoteCount,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.configs[name] = config
	return nil
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager, string) {
	t.Helper()
	sessions := NewMockSessionManager()
	svc := service.NewGameService(sessions, NewMockConfigManager())
	info, err := svc.CreateSession(context.Background(), "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return svc, sessions, info.ID
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	tests := []struct {
		name       string
		configName string
		wantErr    bool
	}{
		{
			name:       "create with default config",
			configName: "",
			wantErr:    false,
		},
		{
			name:       "create with specific config",
			configName: "test",
			wantErr:    false,
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, service.ErrConfigNotFound) {
					t.Errorf("CreateSession() error = %v, want ErrConfigNotFound", err)
				}
				return
			}
			if session == nil {
				t.Fatal("CreateSession() returned nil session")
			}
			if session.GameState.Player != (engine.Position{X: 0, Y: 0}) {
				t.Errorf("Player starts at %+v, want (0,0)", session.GameState.Player)
			}
			if session.ConfigID == "" {
				t.Error("CreateSession() returned empty config id")
			}
		})
	}
}

func TestGameService_SessionNotFound(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("GetSession() error = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.Move(ctx, "missing", "up", true); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Move() error = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.ClosePopup(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("ClosePopup() error = %v, want ErrSessionNotFound", err)
	}
	if err := svc.DeleteSession(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("DeleteSession() error = %v, want ErrSessionNotFound", err)
	}
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	svc, sessions, id := newTestService(t)

	tests := []struct {
		name        string
		direction   string
		wantSuccess bool
		wantReason  string
		wantPos     engine.Position
	}{
		{"valid move right", "right", true, engine.ReasonOK, engine.Position{X: 1, Y: 0}},
		{"blocked by edge", "up", false, engine.ReasonOutOfBounds, engine.Position{X: 1, Y: 0}},
		{"invalid direction", "diagonal", false, engine.ReasonInvalidDirection, engine.Position{X: 1, Y: 0}},
		{"valid move down", "down", true, engine.ReasonOK, engine.Position{X: 1, Y: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Move(ctx, id, tt.direction, true)
			if err != nil {
				t.Fatalf("Move() error = %v", err)
			}
			if result.Success != tt.wantSuccess {
				t.Errorf("Move() success = %v, want %v", result.Success, tt.wantSuccess)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("Move() reason = %q, want %q", result.Reason, tt.wantReason)
			}
			if result.GameState.Player != tt.wantPos {
				t.Errorf("Player at %+v, want %+v", result.GameState.Player, tt.wantPos)
			}
			if !result.Settled || result.GameState.Animation.Sliding {
				t.Error("Settled move should not leave the slide running")
			}
			if result.Step == nil || result.Step.Dir != tt.direction {
				t.Errorf("Invalid StepInfo: %+v", result.Step)
			}
		})
	}

	if sessions.saves == 0 {
		t.Error("Move() should persist the session")
	}
}

func TestGameService_MoveCollectsNote(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	if _, err := svc.Move(ctx, id, "right", true); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	result, err := svc.Move(ctx, id, "right", true)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	if !result.Step.Collected || result.Step.NoteIndex != 0 {
		t.Errorf("Expected note 0 collected, got %+v", result.Step)
	}
	if result.GameState.Popup.Phase != engine.PopupPhotoFadeIn {
		t.Errorf("Popup phase = %q, want %q", result.GameState.Popup.Phase, engine.PopupPhotoFadeIn)
	}
	if !result.GameState.Paused {
		t.Error("Game should pause while the popup is open")
	}

	found := false
	for _, ev := range result.Events {
		if ev.Type == string(engine.EventNoteCollected) {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected note_collected event, got %+v", result.Events)
	}

	// Movement is blocked until the popup closes
	blocked, err := svc.Move(ctx, id, "down", true)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if blocked.Success || blocked.Reason != engine.ReasonPaused {
		t.Errorf("Expected paused rejection, got success=%v reason=%q", blocked.Success, blocked.Reason)
	}
}

func TestGameService_UnsettledMoveAndTick(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	// A second, idle session must not produce updates
	if _, err := svc.CreateSession(ctx, "test"); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	result, err := svc.Move(ctx, id, "down", false)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if result.Settled || !result.GameState.Animation.Sliding {
		t.Fatal("Unsettled move should leave the slide running")
	}

	// tile 16 / slide 4 = 4 frames
	for i := 0; i < 4; i++ {
		updates := svc.Tick(ctx, engine.FrameTime)
		if len(updates) != 1 {
			t.Fatalf("Tick %d returned %d updates, want 1", i, len(updates))
		}
		if updates[0].SessionID != id {
			t.Errorf("Update for %q, want %q", updates[0].SessionID, id)
		}
	}

	state, err := svc.GetGameState(ctx, id)
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	if state.Animation.Sliding {
		t.Error("Slide should be finished after 4 frames")
	}
	if state.Animation.DrawY != 16 {
		t.Errorf("DrawY = %v, want 16", state.Animation.DrawY)
	}

	if updates := svc.Tick(ctx, engine.FrameTime); len(updates) != 0 {
		t.Errorf("Idle tick returned %d updates", len(updates))
	}
}

func TestGameService_PopupSequence(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	if _, err := svc.BulkMove(ctx, id, []string{"right", "right"}); err != nil {
		t.Fatalf("BulkMove() error = %v", err)
	}

	if _, err := svc.ClosePopup(ctx, id); !errors.Is(err, engine.ErrPopupNotDismissable) {
		t.Errorf("Early ClosePopup() error = %v, want ErrPopupNotDismissable", err)
	}

	res, err := svc.Advance(ctx, id, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.GameState.Popup.Phase != engine.PopupMessage || !res.GameState.Popup.CloseVisible {
		t.Fatalf("Popup = %+v, want message phase with close visible", res.GameState.Popup)
	}

	closed, err := svc.ClosePopup(ctx, id)
	if err != nil {
		t.Fatalf("ClosePopup() error = %v", err)
	}
	if closed.GameState.CurrentNote != 1 || closed.GameState.Paused {
		t.Errorf("After close: current=%d paused=%v", closed.GameState.CurrentNote, closed.GameState.Paused)
	}

	if _, err := svc.Advance(ctx, id, 0); err == nil {
		t.Error("Advance(0) should fail")
	}
}

func TestGameService_BulkMove(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		moves         []string
		wantExecuted  int
		wantSuccess   bool
		wantCode      string
		wantNotes     int
		wantTruncated bool
	}{
		{
			name:         "stops when a note is collected",
			moves:        []string{"right", "right", "down", "down"},
			wantExecuted: 2,
			wantSuccess:  true,
			wantCode:     string(engine.EventNoteCollected),
			wantNotes:    1,
		},
		{
			name:         "stops on the first rejected move",
			moves:        []string{"down", "left", "down"},
			wantExecuted: 1,
			wantSuccess:  false,
			wantCode:     engine.ReasonOutOfBounds,
		},
		{
			name:         "empty moves",
			moves:        []string{},
			wantExecuted: 0,
			wantSuccess:  true,
		},
		{
			name:          "truncated",
			moves:         alternating(service.MaxBulkMoves + 6),
			wantExecuted:  service.MaxBulkMoves,
			wantSuccess:   true,
			wantTruncated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, id := newTestService(t)
			result, err := svc.BulkMove(ctx, id, tt.moves)
			if err != nil {
				t.Fatalf("BulkMove() error = %v", err)
			}
			if result.MovesExecuted != tt.wantExecuted {
				t.Errorf("MovesExecuted = %d, want %d", result.MovesExecuted, tt.wantExecuted)
			}
			if result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", result.Success, tt.wantSuccess)
			}
			if result.StopReasonCode != tt.wantCode {
				t.Errorf("StopReasonCode = %q, want %q", result.StopReasonCode, tt.wantCode)
			}
			if result.NotesDelta != tt.wantNotes {
				t.Errorf("NotesDelta = %d, want %d", result.NotesDelta, tt.wantNotes)
			}
			if result.Truncated != tt.wantTruncated {
				t.Errorf("Truncated = %v, want %v", result.Truncated, tt.wantTruncated)
			}
			if result.RequestedMoves != len(tt.moves) {
				t.Errorf("RequestedMoves = %d, want %d", result.RequestedMoves, len(tt.moves))
			}
			if len(result.Grid) != 5 {
				t.Errorf("Grid has %d rows, want 5", len(result.Grid))
			}
		})
	}
}

// alternating returns right,left pairs that never reach the first note
func alternating(n int) []string {
	moves := make([]string, n)
	for i := range moves {
		if i%2 == 0 {
			moves[i] = "right"
		} else {
			moves[i] = "left"
		}
	}
	return moves
}

func TestGameService_FullGame(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	legs := [][]string{
		{"right", "right"},
		{"down", "down"},
		{"right", "right", "down", "down"},
	}
	for i, leg := range legs {
		res, err := svc.BulkMove(ctx, id, leg)
		if err != nil {
			t.Fatalf("leg %d: BulkMove() error = %v", i, err)
		}
		if res.StopReasonCode != string(engine.EventNoteCollected) {
			t.Fatalf("leg %d: stop code %q, want note_collected", i, res.StopReasonCode)
		}
		if _, err := svc.Advance(ctx, id, 500*time.Millisecond); err != nil {
			t.Fatalf("leg %d: Advance() error = %v", i, err)
		}
		if _, err := svc.ClosePopup(ctx, id); err != nil {
			t.Fatalf("leg %d: ClosePopup() error = %v", i, err)
		}
	}

	state, err := svc.GetGameState(ctx, id)
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	if !state.Completed || !state.Carousel.Visible {
		t.Fatalf("Expected completed game with carousel, got completed=%v carousel=%+v", state.Completed, state.Carousel)
	}
	if state.NotesCollected != 3 {
		t.Errorf("NotesCollected = %d, want 3", state.NotesCollected)
	}

	res, err := svc.Advance(ctx, id, 1500*time.Millisecond)
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.GameState.Carousel.Index != 1 || res.GameState.Carousel.Image != "b.jpg" {
		t.Errorf("Carousel = %+v, want index 1", res.GameState.Carousel)
	}

	if _, err := svc.HandleAction(ctx, id, service.ActionCloseCarousel, ""); err != nil {
		t.Fatalf("HandleAction(close_carousel) error = %v", err)
	}
	if _, err := svc.CloseCarousel(ctx, id); !errors.Is(err, engine.ErrCarouselNotVisible) {
		t.Errorf("Second CloseCarousel() error = %v, want ErrCarouselNotVisible", err)
	}

	// Free roam after the carousel
	moved, err := svc.Move(ctx, id, "left", true)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !moved.Success {
		t.Errorf("Move after carousel rejected: %s", moved.Reason)
	}
}

func TestGameService_HandleAction(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	res, err := svc.HandleAction(ctx, id, service.ActionMove, "right")
	if err != nil {
		t.Fatalf("HandleAction(move) error = %v", err)
	}
	if !res.Success || !res.GameState.Animation.Sliding {
		t.Errorf("Move action should start a slide, got success=%v sliding=%v", res.Success, res.GameState.Animation.Sliding)
	}

	if _, err := svc.HandleAction(ctx, id, "jump", ""); !errors.Is(err, service.ErrUnknownAction) {
		t.Errorf("HandleAction(jump) error = %v, want ErrUnknownAction", err)
	}

	reset, err := svc.HandleAction(ctx, id, service.ActionReset, "")
	if err != nil {
		t.Fatalf("HandleAction(reset) error = %v", err)
	}
	if reset.GameState.Player != (engine.Position{X: 0, Y: 0}) || reset.GameState.Animation.Sliding {
		t.Errorf("Reset state: player=%+v sliding=%v", reset.GameState.Player, reset.GameState.Animation.Sliding)
	}
}

func TestGameService_GetGrid(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	rows, err := svc.GetGrid(ctx, id)
	if err != nil {
		t.Fatalf("GetGrid() error = %v", err)
	}
	want := []string{"@.N..", ".....", ".....", ".....", "....."}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, rows[i], want[i])
		}
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	// Make some moves to generate history
	moves := []string{"down", "right", "up", "left"}
	if _, err := svc.BulkMove(ctx, id, moves); err != nil {
		t.Fatalf("Failed to make moves: %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		opts      service.HistoryOptions
		wantMoves int
		wantFirst string
		wantPages int
		wantErr   bool
	}{
		{
			name:      "default options",
			sessionID: id,
			opts:      service.HistoryOptions{},
			wantMoves: 4,
			wantFirst: "left",
			wantPages: 1,
		},
		{
			name:      "with pagination",
			sessionID: id,
			opts:      service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"},
			wantMoves: 2,
			wantFirst: "down",
			wantPages: 2,
		},
		{
			name:      "second page descending",
			sessionID: id,
			opts:      service.HistoryOptions{Page: 2, Limit: 3, Order: "desc"},
			wantMoves: 1,
			wantFirst: "down",
			wantPages: 2,
		},
		{
			name:      "page past the end",
			sessionID: id,
			opts:      service.HistoryOptions{Page: 9, Limit: 2},
			wantMoves: 0,
			wantPages: 2,
		},
		{
			name:      "invalid session",
			sessionID: "nonexistent",
			opts:      service.HistoryOptions{},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetMoveHistory(ctx, tt.sessionID, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetMoveHistory() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if result.Moves == nil {
				t.Fatal("GetMoveHistory() returned nil moves slice")
			}
			if len(result.Moves) != tt.wantMoves {
				t.Errorf("got %d moves, want %d", len(result.Moves), tt.wantMoves)
			}
			if tt.wantFirst != "" && len(result.Moves) > 0 && result.Moves[0].Action != tt.wantFirst {
				t.Errorf("first move = %q, want %q", result.Moves[0].Action, tt.wantFirst)
			}
			if result.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantPages)
			}
			if result.TotalMoves != 4 {
				t.Errorf("TotalMoves = %d, want 4", result.TotalMoves)
			}
		})
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	// Create multiple sessions
	for i := 0; i < 3; i++ {
		_, err := svc.CreateSession(ctx, "test")
		if err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
	}

	sessionList, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}

	if len(sessionList) != 3 {
		t.Errorf("ListSessions() returned %d sessions, want 3", len(sessionList))
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	if _, err := svc.BulkMove(ctx, id, []string{"right", "right"}); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}

	state, err := svc.Reset(ctx, id)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if state.Player != (engine.Position{X: 0, Y: 0}) {
		t.Errorf("Player at %+v after reset, want (0,0)", state.Player)
	}
	if state.Popup.Visible() || state.Paused || state.NotesCollected != 0 {
		t.Errorf("Reset left popup=%v paused=%v notes=%d", state.Popup.Visible(), state.Paused, state.NotesCollected)
	}
	if state.TotalMoves != 2 || state.CurrentMovesCount != 0 {
		t.Errorf("TotalMoves=%d CurrentMovesCount=%d, want 2 and 0", state.TotalMoves, state.CurrentMovesCount)
	}
}

func TestGameService_StateIsSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	state, err := svc.GetGameState(ctx, id)
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	state.Player = engine.Position{X: 4, Y: 4}
	state.Notes[0].Collected = true

	again, err := svc.GetGameState(ctx, id)
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	if again.Player != (engine.Position{X: 0, Y: 0}) || again.Notes[0].Collected {
		t.Error("Mutating a returned state changed the session")
	}
}
