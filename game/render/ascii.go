package render

import (
	"strings"

	"github.com/wricardo/notehunt/game/engine"
)

// Cell symbols used by the text view
const (
	SymbolEmpty  = '.'
	SymbolNote   = 'N'
	SymbolPlayer = '@'
)

// Rows renders the board as text, one string per row. Only the active note is
// shown, matching what the graphical board reveals.
func Rows(gs *engine.GameState) []string {
	grid := make([][]byte, gs.GridSize)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(string(SymbolEmpty), gs.GridSize))
	}

	if note, ok := gs.ActiveNote(); ok && !note.Collected && gs.InBounds(note.X, note.Y) {
		grid[note.Y][note.X] = SymbolNote
	}
	if gs.InBounds(gs.Player.X, gs.Player.Y) {
		grid[gs.Player.Y][gs.Player.X] = SymbolPlayer
	}

	rows := make([]string, len(grid))
	for y, row := range grid {
		rows[y] = string(row)
	}
	return rows
}

// ASCII renders the board as a newline separated block
func ASCII(gs *engine.GameState) string {
	return strings.Join(Rows(gs), "\n")
}
