package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Snapshot() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsPaused() bool
	IsCompleted() bool
	GetPlayerPosition() Position

	// Movement operations
	Move(direction string) bool
	MoveBy(dx, dy int) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Frame loop
	Update(dt time.Duration) bool
	Advance(d time.Duration) bool
	Settle() bool

	// Presentation
	ClosePopup() error
	CloseCarousel() error
	ActiveNote() (*Note, bool)
	DrainEvents() []Event

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
	events []Event
}

// NewEngine creates a new game engine with the provided configuration.
// A zero config seed picks a random one.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	seed := config.Seed
	if seed == 0 {
		seed = NewSeed()
	}
	return NewEngineWithSeed(config, seed)
}

// NewEngineWithSeed creates a new game engine whose note layout is derived from seed
func NewEngineWithSeed(config *GameConfig, seed uint64) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config, seed),
	}, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Snapshot returns a copy of the current game state
func (e *GameEngine) Snapshot() *GameState {
	return e.state.Clone()
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.GridSize != e.config.GridSize || state.TileSize != e.config.TileSize {
		return fmt.Errorf("state geometry %dx%d/%d does not match config %dx%d/%d",
			state.GridSize, state.GridSize, state.TileSize,
			e.config.GridSize, e.config.GridSize, e.config.TileSize)
	}
	if len(state.Notes) != e.config.NoteCount {
		return fmt.Errorf("state has %d notes, config expects %d", len(state.Notes), e.config.NoteCount)
	}
	e.state = state
	return nil
}

// Reset restarts the game. Notes are re-placed unless the config pins a seed
// or explicit positions.
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	seed := e.config.Seed
	if seed == 0 {
		seed = NewSeed()
	}
	e.state = InitGameStateFromConfig(e.config, seed)

	// Restore cumulative history and totals; clear only the current segment
	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	e.events = nil
	e.emit(Event{Type: EventReset, Message: e.state.Message, Position: e.state.Player})
	return e.state
}

// IsPaused reports whether a popup or the carousel is on screen
func (e *GameEngine) IsPaused() bool {
	return e.state.Paused
}

// IsCompleted reports whether every note has been collected
func (e *GameEngine) IsCompleted() bool {
	return e.state.Completed
}

// GetPlayerPosition returns the current logical player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.state.Player
}

// Move attempts to move the player in the specified direction
func (e *GameEngine) Move(direction string) bool {
	dx, dy, ok := DirectionDelta(direction)
	if !ok {
		pos := e.state.Player
		e.state.AddMoveToHistory(direction, pos, pos, false, ReasonInvalidDirection)
		return false
	}
	return e.move(direction, dx, dy)
}

// MoveBy attempts a move by a raw grid delta
func (e *GameEngine) MoveBy(dx, dy int) bool {
	return e.move(fmt.Sprintf("%+d,%+d", dx, dy), dx, dy)
}

func (e *GameEngine) move(action string, dx, dy int) bool {
	prevPos := e.state.Player
	success, reason := e.state.MovePlayer(dx, dy)
	e.state.AddMoveToHistory(action, prevPos, e.state.Player, success, reason)

	if success {
		e.emit(Event{
			Type:     EventMove,
			Message:  fmt.Sprintf("Moved %s to (%d,%d)", action, e.state.Player.X, e.state.Player.Y),
			Position: e.state.Player,
		})
	}
	return success
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	dx, dy, ok := DirectionDelta(direction)
	if !ok || e.state.Paused || e.state.Animation.Sliding {
		return false
	}
	return e.state.InBounds(e.state.Player.X+dx, e.state.Player.Y+dy)
}

// GetPossibleMoves returns all valid directions the player can move
func (e *GameEngine) GetPossibleMoves() []string {
	directions := []string{Up, Down, Left, Right}
	var possible []string

	for _, dir := range directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}

	return possible
}

// Update advances the game by one animation frame. The slide moves one fixed
// step regardless of dt; popup and carousel timers advance by dt. It reports
// whether anything visible changed.
func (e *GameEngine) Update(dt time.Duration) bool {
	gs := e.state
	gs.Frame++
	changed := false
	opened := false

	if gs.Animation.Sliding {
		changed = true
		if gs.StepSlide(float64(e.config.SlideSpeed)) {
			opened = e.collectNotes()
		}
	}

	// A popup opened on this frame starts its timers on the next one
	if !opened && e.advancePopup(dt) {
		changed = true
	}
	if e.advanceCarousel(dt) {
		changed = true
	}

	return changed
}

// Advance runs frames until d has elapsed
func (e *GameEngine) Advance(d time.Duration) bool {
	changed := false
	for d > 0 {
		step := FrameTime
		if d < step {
			step = d
		}
		if e.Update(step) {
			changed = true
		}
		d -= step
	}
	return changed
}

// Settle runs frames until the current slide has finished
func (e *GameEngine) Settle() bool {
	changed := false
	for i := 0; e.state.Animation.Sliding && i < MaxSettle; i++ {
		if e.Update(FrameTime) {
			changed = true
		}
	}
	return changed
}

// ActiveNote returns the note the player is currently looking for
func (e *GameEngine) ActiveNote() (*Note, bool) {
	return e.state.ActiveNote()
}

// DrainEvents returns and clears the events emitted since the last call
func (e *GameEngine) DrainEvents() []Event {
	events := e.events
	e.events = nil
	return events
}

func (e *GameEngine) emit(ev Event) {
	ev.Frame = e.state.Frame
	e.events = append(e.events, ev)
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	seed := config.Seed
	if seed == 0 {
		seed = NewSeed()
	}
	e.config = config
	e.state = InitGameStateFromConfig(config, seed)
	e.events = nil
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}
