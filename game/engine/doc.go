// Package engine provides the core game logic for Note Hunt.
//
// The engine package implements the game mechanics including:
//   - Discrete grid movement with a pixel-interpolated slide animation
//   - Sequential note placement, collection and progression
//   - The popup sequence (photo fade-in, blur, message, dismiss)
//   - The final image carousel
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents the current game state,
// while GameConfig defines notes, messages, images and timings loaded from
// JSON files.
//
// Time:
//
// The engine never reads the wall clock to drive gameplay. Callers advance it
// explicitly: every Update call is one animation frame (the slide moves one
// fixed step) and also advances popup and carousel timers by the elapsed
// duration passed in. A desktop client calls Update once per frame, the
// server calls it from its frame runner, and tests call it directly.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.Move("right")
//	for gameEngine.Update(time.Second / 60) {
//		// draw
//	}
//
// Game Rules:
//
// The player token starts at the configured start cell of an 8x8 grid. One
// note is active at a time; stepping onto it opens a popup with its photo and
// message. While a popup is visible the game is paused. Dismissing the popup
// activates the next note; after the last one a carousel cycles through every
// photo until it is closed.
package engine
