// Package render draws Note Hunt game states.
//
// Drawing is a pure function of an engine.GameState onto a Canvas. Backends
// implement Canvas for a concrete surface (an ebiten image, a terminal
// screen) and Layout maps the engine's logical pixel space to that surface.
// Rows and ASCII produce a text view of the board for the API and agents.
package render
