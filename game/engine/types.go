package engine

import (
	"errors"
	"time"
)

// Direction names accepted by Move
const (
	Up    = "up"
	Down  = "down"
	Left  = "left"
	Right = "right"

	// Validation constants
	MinGridSize  = 4
	MaxGridSize  = 32
	MinTileSize  = 8
	MaxTileSize  = 512
	MaxSettle    = 10000
	DefaultFPS   = 60
	FrameTime    = time.Second / DefaultFPS
	InitialScale = 0.8
)

// Move outcome reasons recorded in history
const (
	ReasonOK               = "ok"
	ReasonPaused           = "paused"
	ReasonSliding          = "sliding"
	ReasonOutOfBounds      = "out_of_bounds"
	ReasonInvalidDirection = "invalid_direction"
)

var (
	ErrPopupNotDismissable = errors.New("popup cannot be dismissed yet")
	ErrCarouselNotVisible  = errors.New("carousel is not visible")
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Note is a collectible grid item unlocking a photo and a message
type Note struct {
	Index     int    `json:"index"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Image     string `json:"image"`
	Message   string `json:"message"`
	Collected bool   `json:"collected"`
}

// Pos returns the grid cell of the note
func (n Note) Pos() Position {
	return Position{X: n.X, Y: n.Y}
}

// Animation is the pixel-space slide state of the player token.
// Pixel space is logical: cell (x, y) starts at (x*TileSize, y*TileSize).
type Animation struct {
	DrawX   float64 `json:"draw_x"`
	DrawY   float64 `json:"draw_y"`
	TargetX float64 `json:"target_x"`
	TargetY float64 `json:"target_y"`
	Sliding bool    `json:"sliding"`
}

// PopupPhase is the state of the note popup
type PopupPhase string

const (
	PopupHidden      PopupPhase = "hidden"
	PopupPhotoFadeIn PopupPhase = "photo_fade_in"
	PopupMessage     PopupPhase = "message_visible"
)

// Popup is the photo and message overlay shown after collecting a note
type Popup struct {
	Phase        PopupPhase    `json:"phase"`
	NoteIndex    int           `json:"note_index"`
	Image        string        `json:"image,omitempty"`
	Message      string        `json:"message,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
	PhotoVisible bool          `json:"photo_visible"`
	PhotoAlpha   float64       `json:"photo_alpha"`
	PhotoScale   float64       `json:"photo_scale"`
	Blur         bool          `json:"blur"`
	CloseVisible bool          `json:"close_visible"`
}

// Visible reports whether any part of the popup is on screen
func (p Popup) Visible() bool {
	return p.Phase != "" && p.Phase != PopupHidden
}

// Carousel is the final looping image display
type Carousel struct {
	Visible bool          `json:"visible"`
	Index   int           `json:"index"`
	Image   string        `json:"image,omitempty"`
	Text    string        `json:"text,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// EventType names something that happened inside the engine
type EventType string

const (
	EventMove             EventType = "move"
	EventNoteCollected    EventType = "note_collected"
	EventPhotoShown       EventType = "photo_shown"
	EventMessageShown     EventType = "message_shown"
	EventPopupClosed      EventType = "popup_closed"
	EventNoteActivated    EventType = "note_activated"
	EventCarouselStarted  EventType = "carousel_started"
	EventCarouselAdvanced EventType = "carousel_advanced"
	EventCarouselClosed   EventType = "carousel_closed"
	EventReset            EventType = "reset"
)

// Event is emitted by the engine and drained by callers
type Event struct {
	Type      EventType `json:"type"`
	Message   string    `json:"message"`
	NoteIndex int       `json:"note_index"`
	Image     string    `json:"image,omitempty"`
	Position  Position  `json:"position"`
	Frame     int64     `json:"frame"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	GridSize           int        `json:"grid_size"`
	NoteCount          int        `json:"note_count"`
	TileSize           int        `json:"tile_size"`
	SlideSpeed         int        `json:"slide_speed"`
	PlayerStart        Position   `json:"player_start"`
	Seed               uint64     `json:"seed,omitempty"`
	NotePositions      []Position `json:"note_positions,omitempty"`
	PhotoDelayMS       int        `json:"photo_delay_ms"`
	MessageDelayMS     int        `json:"message_delay_ms"`
	FadeMS             int        `json:"fade_ms"`
	CarouselIntervalMS int        `json:"carousel_interval_ms"`
	Messages           []string   `json:"messages"`
	Images             []string   `json:"images"`
	PlayerImage        string     `json:"player_image,omitempty"`
	Music              string     `json:"music,omitempty"`
	FinalMessage       string     `json:"final_message"`
}

// PhotoDelay is the delay between popup open and the photo starting to fade in
func (c *GameConfig) PhotoDelay() time.Duration {
	return time.Duration(c.PhotoDelayMS) * time.Millisecond
}

// MessageDelay is the delay between popup open and the message appearing
func (c *GameConfig) MessageDelay() time.Duration {
	return time.Duration(c.MessageDelayMS) * time.Millisecond
}

// FadeDuration is how long the photo takes to reach full opacity
func (c *GameConfig) FadeDuration() time.Duration {
	return time.Duration(c.FadeMS) * time.Millisecond
}

// CarouselInterval is the time each carousel image stays on screen
func (c *GameConfig) CarouselInterval() time.Duration {
	return time.Duration(c.CarouselIntervalMS) * time.Millisecond
}

// GameState represents the complete game state
type GameState struct {
	ConfigName     string    `json:"config_name"`
	GridSize       int       `json:"grid_size"`
	TileSize       int       `json:"tile_size"`
	Seed           uint64    `json:"seed"`
	PlayerImage    string    `json:"player_image,omitempty"`
	Player         Position  `json:"player"`
	Notes          []Note    `json:"notes"`
	CurrentNote    int       `json:"current_note"`
	NotesCollected int       `json:"notes_collected"`
	Animation      Animation `json:"animation"`
	Paused         bool      `json:"paused"`
	Popup          Popup     `json:"popup"`
	Carousel       Carousel  `json:"carousel"`
	Completed      bool      `json:"completed"`
	Finished       bool      `json:"finished"`
	Message        string    `json:"message"`
	Frame          int64     `json:"frame"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action       string   `json:"action"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Success      bool     `json:"success"`
	Reason       string   `json:"reason"`
	Timestamp    int64    `json:"timestamp"`
	MoveNumber   int      `json:"move_number"`
}
