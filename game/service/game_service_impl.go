package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/render"
)

const (
	// MaxBulkMoves limits the number of moves in a single bulk request
	MaxBulkMoves = 64
	// MaxAdvance limits how far a single Advance call can move the clock
	MaxAdvance = time.Minute
)

// gameServiceImpl implements the GameService interface. A single mutex guards
// every engine; the engines themselves are not safe for concurrent use.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	configID := sess.ConfigID
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigID:       configID,
		ConfigName:     sess.Config.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.Snapshot(),
		GameConfig:     sess.Config,
	}
}

// session looks up a session and marks it accessed. Callers hold s.mu.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, ErrSessionNotFound)
	}
	if err := s.sessions.UpdateLastAccessed(sess.ID); err != nil {
		log.Debug().Err(err).Str("session", sess.ID).Msg("failed to update last access")
	}
	return sess, nil
}

func (s *gameServiceImpl) save(sess *Session, after string) {
	if err := s.sessions.Save(sess.ID); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Str("after", after).Msg("failed to persist session")
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	configID := configName
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				var ids []string
				if available, listErr := s.configs.ListConfigs(); listErr == nil {
					for _, cfg := range available {
						ids = append(ids, cfg.ConfigID)
					}
				}
				return nil, fmt.Errorf("config %q not found, available configs: %v: %w", configName, ids, ErrConfigNotFound)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().Str("session", sess.ID).Str("config", configID).Uint64("seed", sess.Engine.GetState().Seed).Msg("session created")
	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %q: %w", sessionID, ErrSessionNotFound)
	}
	return nil
}

// Move executes a single move. With settle the slide is run to completion
// before returning, which also runs the collection check.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, settle bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := s.move(sess, direction, settle)
	s.save(sess, "move")

	log.Debug().
		Str("session", sess.ID).
		Str("dir", direction).
		Bool("ok", result.Success).
		Str("reason", result.Reason).
		Interface("from", result.Step.From).
		Interface("to", result.Step.To).
		Msg("move")
	return result, nil
}

func (s *gameServiceImpl) move(sess *Session, direction string, settle bool) *MoveResult {
	eng := sess.Engine
	prevPos := eng.GetPlayerPosition()
	success := eng.Move(direction)
	if success && settle {
		eng.Settle()
	}

	reason := engine.ReasonOK
	if last := eng.GetLastMove(); last != nil {
		reason = last.Reason
	}

	events := convertEvents(eng.DrainEvents())
	step := &StepInfo{
		Dir:     direction,
		From:    prevPos,
		To:      eng.GetPlayerPosition(),
		Success: success,
		Reason:  reason,
	}
	for _, ev := range events {
		if ev.Type == string(engine.EventNoteCollected) {
			step.Collected = true
			step.NoteIndex = ev.NoteIndex
		}
	}

	state := eng.Snapshot()
	return &MoveResult{
		Success:   success,
		Reason:    reason,
		GameState: state,
		Message:   state.Message,
		Events:    events,
		Step:      step,
		Settled:   !state.Animation.Sliding,
	}
}

// BulkMove executes moves in order, settling each slide. It stops at the first
// rejected move or when a note popup opens.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	eng := sess.Engine
	start := eng.GetState()
	startNotes := start.NotesCollected

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
		StartPos:       start.Player,
	}

	// Limit moves to prevent abuse
	if len(moves) > MaxBulkMoves {
		result.Truncated = true
		result.Limit = MaxBulkMoves
		moves = moves[:MaxBulkMoves]
	}

	// A slide left running by a real-time client finishes first
	eng.Settle()
	result.Events = append(result.Events, convertEvents(eng.DrainEvents())...)

	for i, dir := range moves {
		mr := s.move(sess, dir, true)
		result.Events = append(result.Events, mr.Events...)
		mr.Step.Idx = i + 1
		result.Steps = append(result.Steps, *mr.Step)

		if !mr.Success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d rejected: %s (%s)", i+1, dir, mr.Reason)
			result.StopReasonCode = mr.Reason
			result.StoppedOnMove = i + 1
			break
		}
		result.MovesExecuted++

		if mr.Step.Collected {
			result.StoppedReason = fmt.Sprintf("note %d collected on move %d", mr.Step.NoteIndex+1, i+1)
			result.StopReasonCode = string(engine.EventNoteCollected)
			result.StoppedOnMove = i + 1
			break
		}
	}

	end := eng.Snapshot()
	result.GameState = end
	result.EndPos = end.Player
	result.NotesDelta = end.NotesCollected - startNotes
	result.Message = end.Message
	result.PossibleMoves = eng.GetPossibleMoves()
	result.Grid = render.Rows(end)

	s.save(sess, "bulk_move")

	log.Info().
		Str("session", sess.ID).
		Int("executed", result.MovesExecuted).
		Int("requested", result.RequestedMoves).
		Str("stop", result.StopReasonCode).
		Interface("end", result.EndPos).
		Msg("bulk move")
	return result, nil
}

// ClosePopup dismisses the note popup of a session
func (s *gameServiceImpl) ClosePopup(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.closePopup(sess)
}

func (s *gameServiceImpl) closePopup(sess *Session) (*ActionResult, error) {
	if err := sess.Engine.ClosePopup(); err != nil {
		return nil, fmt.Errorf("close popup: %w", err)
	}
	s.save(sess, ActionClosePopup)
	return s.actionResult(sess, ActionClosePopup), nil
}

// CloseCarousel closes the final carousel of a session
func (s *gameServiceImpl) CloseCarousel(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.closeCarousel(sess)
}

func (s *gameServiceImpl) closeCarousel(sess *Session) (*ActionResult, error) {
	if err := sess.Engine.CloseCarousel(); err != nil {
		return nil, fmt.Errorf("close carousel: %w", err)
	}
	s.save(sess, ActionCloseCarousel)
	return s.actionResult(sess, ActionCloseCarousel), nil
}

// Advance moves the session clock forward by d, running slide and popup
// timers as the frame runner would
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string, d time.Duration) (*ActionResult, error) {
	if d <= 0 {
		return nil, fmt.Errorf("advance duration must be positive, got %s", d)
	}
	if d > MaxAdvance {
		d = MaxAdvance
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.Advance(d)
	s.save(sess, "advance")
	return s.actionResult(sess, "advance"), nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.Reset()
	sess.Engine.DrainEvents()
	s.save(sess, ActionReset)

	log.Info().Str("session", sess.ID).Msg("game reset")
	return sess.Engine.Snapshot(), nil
}

// HandleAction applies an action sent by a real-time client. Moves are not
// settled; the frame runner animates them.
func (s *gameServiceImpl) HandleAction(ctx context.Context, sessionID, action, direction string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionMove:
		mr := s.move(sess, direction, false)
		return &ActionResult{
			Action:    ActionMove,
			Success:   mr.Success,
			GameState: mr.GameState,
			Message:   mr.Reason,
			Events:    mr.Events,
		}, nil
	case ActionClosePopup:
		return s.closePopup(sess)
	case ActionCloseCarousel:
		return s.closeCarousel(sess)
	case ActionReset:
		sess.Engine.Reset()
		s.save(sess, ActionReset)
		return s.actionResult(sess, ActionReset), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

func (s *gameServiceImpl) actionResult(sess *Session, action string) *ActionResult {
	events := convertEvents(sess.Engine.DrainEvents())
	state := sess.Engine.Snapshot()
	return &ActionResult{
		Action:    action,
		Success:   true,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}
}

// Tick advances every session by one frame and returns the sessions whose
// visible state changed
func (s *gameServiceImpl) Tick(ctx context.Context, dt time.Duration) []SessionUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updates []SessionUpdate
	for _, sess := range s.sessions.List() {
		if ctx.Err() != nil {
			break
		}

		changed := sess.Engine.Update(dt)
		events := convertEvents(sess.Engine.DrainEvents())
		if !changed && len(events) == 0 {
			continue
		}

		name := "tick"
		if len(events) > 0 {
			name = events[len(events)-1].Type
			s.save(sess, "tick")
		}
		updates = append(updates, SessionUpdate{
			SessionID: sess.ID,
			Event:     name,
			GameState: sess.Engine.Snapshot(),
			Events:    events,
		})
	}
	return updates
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// GetGrid returns the text view of a session's board
func (s *gameServiceImpl) GetGrid(ctx context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return render.Rows(sess.Engine.GetState()), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func convertEvents(events []engine.Event) []GameEvent {
	out := make([]GameEvent, 0, len(events))
	now := time.Now()
	for _, ev := range events {
		out = append(out, GameEvent{
			Type:      string(ev.Type),
			Message:   ev.Message,
			Timestamp: now,
			Position:  ev.Position,
			NoteIndex: ev.NoteIndex,
			Image:     ev.Image,
			Frame:     ev.Frame,
		})
	}
	return out
}
