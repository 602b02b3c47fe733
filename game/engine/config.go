package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid and tiles
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}
	if config.TileSize < MinTileSize || config.TileSize > MaxTileSize {
		return fmt.Errorf("config validation: tile_size must be between %d and %d, got %d", MinTileSize, MaxTileSize, config.TileSize)
	}
	if config.SlideSpeed < 1 || config.SlideSpeed > config.TileSize {
		return fmt.Errorf("config validation: slide_speed must be between 1 and tile_size (%d), got %d", config.TileSize, config.SlideSpeed)
	}

	cells := config.GridSize * config.GridSize
	if config.NoteCount < 1 || config.NoteCount > cells-1 {
		return fmt.Errorf("config validation: note_count must be between 1 and %d, got %d", cells-1, config.NoteCount)
	}

	start := config.PlayerStart
	if !inBounds(config.GridSize, start.X, start.Y) {
		return fmt.Errorf("config validation: player_start (%d,%d) is outside the %dx%d grid",
			start.X, start.Y, config.GridSize, config.GridSize)
	}

	// Validate notes content
	if len(config.Messages) != config.NoteCount {
		return fmt.Errorf("config validation: messages must have %d entries to match note_count, got %d",
			config.NoteCount, len(config.Messages))
	}
	if len(config.Images) != config.NoteCount {
		return fmt.Errorf("config validation: images must have %d entries to match note_count, got %d",
			config.NoteCount, len(config.Images))
	}
	for i, msg := range config.Messages {
		if msg == "" {
			return fmt.Errorf("config validation: messages[%d] is empty", i)
		}
	}
	for i, img := range config.Images {
		if img == "" {
			return fmt.Errorf("config validation: images[%d] is empty", i)
		}
	}
	if config.FinalMessage == "" {
		return fmt.Errorf("config validation: final_message is required")
	}

	// Validate timings
	if config.PhotoDelayMS < 0 {
		return fmt.Errorf("config validation: photo_delay_ms must not be negative, got %d", config.PhotoDelayMS)
	}
	if config.MessageDelayMS < config.PhotoDelayMS {
		return fmt.Errorf("config validation: message_delay_ms (%d) must not be shorter than photo_delay_ms (%d)",
			config.MessageDelayMS, config.PhotoDelayMS)
	}
	if config.FadeMS < 0 {
		return fmt.Errorf("config validation: fade_ms must not be negative, got %d", config.FadeMS)
	}
	if config.CarouselIntervalMS <= 0 {
		return fmt.Errorf("config validation: carousel_interval_ms must be positive, got %d", config.CarouselIntervalMS)
	}

	// Validate authored note positions
	if len(config.NotePositions) > 0 {
		if len(config.NotePositions) != config.NoteCount {
			return fmt.Errorf("config validation: note_positions must have %d entries to match note_count, got %d",
				config.NoteCount, len(config.NotePositions))
		}
		seen := map[Position]bool{start: true}
		for i, pos := range config.NotePositions {
			if !inBounds(config.GridSize, pos.X, pos.Y) {
				return fmt.Errorf("config validation: note_positions[%d] (%d,%d) is outside the grid", i, pos.X, pos.Y)
			}
			if pos == start {
				return fmt.Errorf("config validation: note_positions[%d] (%d,%d) overlaps player_start", i, pos.X, pos.Y)
			}
			if seen[pos] {
				return fmt.Errorf("config validation: note_positions[%d] (%d,%d) is used twice", i, pos.X, pos.Y)
			}
			seen[pos] = true
		}
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return config, nil
}

// ParseGameConfig decodes and validates a JSON configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns the built-in configuration of the original game
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:               "classic",
		Description:        "Six notes hidden on an 8x8 board",
		GridSize:           8,
		NoteCount:          6,
		TileSize:           64,
		SlideSpeed:         8,
		PlayerStart:        Position{X: 0, Y: 0},
		PhotoDelayMS:       50,
		MessageDelayMS:     400,
		FadeMS:             300,
		CarouselIntervalMS: 3000,
		Messages: []string{
			"you're my favorite person to get lost with.",
			"thank you for being the light.",
			"every moment with you is worth it.",
			"you make even the smallest moments unforgettable.",
			"you're the reason behind why i keep fighting for us.",
			"forever with you sounds perfect to me.",
		},
		Images: []string{
			"img1.jpg", "img2.jpg", "img3.jpg",
			"img4.jpg", "img5.jpg", "img6.jpg",
		},
		PlayerImage:  "heart.png",
		Music:        "ambient.mp3",
		FinalMessage: "this is an appreciation for you. thank you so much for being here. i love you",
	}
}

// InitGameStateFromConfig creates a new game state using the provided configuration.
// Notes come from config.NotePositions when present, otherwise they are placed
// randomly from seed.
func InitGameStateFromConfig(config *GameConfig, seed uint64) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	positions := config.NotePositions
	if len(positions) == 0 {
		positions = PlaceNotes(newRand(seed), config.GridSize, config.NoteCount, config.PlayerStart)
	}

	notes := make([]Note, len(positions))
	for i, pos := range positions {
		notes[i] = Note{
			Index:   i,
			X:       pos.X,
			Y:       pos.Y,
			Image:   config.Images[i],
			Message: config.Messages[i],
		}
	}

	start := config.PlayerStart
	px := float64(start.X * config.TileSize)
	py := float64(start.Y * config.TileSize)

	return &GameState{
		ConfigName:  config.Name,
		GridSize:    config.GridSize,
		TileSize:    config.TileSize,
		Seed:        seed,
		PlayerImage: config.PlayerImage,
		Player:      start,
		Notes:       notes,
		Animation: Animation{
			DrawX:   px,
			DrawY:   py,
			TargetX: px,
			TargetY: py,
		},
		Popup:             Popup{Phase: PopupHidden, PhotoScale: InitialScale},
		Message:           fmt.Sprintf("Find note 1 of %d", len(notes)),
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		TotalMoves:        0,
		CurrentMovesCount: 0,
	}
}
