// Package config provides configuration management for Note Hunt.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each configuration is a JSON file named <id>.json. It defines the board
// (grid_size, tile_size, player_start), the notes (note_count, messages,
// images and optional pinned note_positions), popup timings in milliseconds
// and the final carousel.
//
// Stores:
//
// NewManager reads and writes a directory on disk. NewEmbeddedManager serves
// any fs.FS read-only; the binary ships classic and quick this way.
//
// Usage:
//
//	manager := config.NewEmbeddedManager(assets.Configs())
//
//	gameConfig, err := manager.LoadConfig("quick")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	configs, err := manager.ListConfigs()
//
// The default is classic when present, then the first valid file, then
// engine.DefaultConfig.
package config
