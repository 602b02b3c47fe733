package engine

import (
	"math"
	"time"
)

// DirectionDelta maps a direction name to a grid step
func DirectionDelta(direction string) (dx, dy int, ok bool) {
	switch direction {
	case Up:
		return 0, -1, true
	case Down:
		return 0, 1, true
	case Left:
		return -1, 0, true
	case Right:
		return 1, 0, true
	}
	return 0, 0, false
}

// InBounds checks whether the coordinates are on the grid
func (gs *GameState) InBounds(x, y int) bool {
	return inBounds(gs.GridSize, x, y)
}

// MovePlayer attempts a single-cell step. It is rejected while paused, while a
// slide is running, or when the destination is off the grid. On success the
// logical position changes immediately and the slide target is set.
func (gs *GameState) MovePlayer(dx, dy int) (bool, string) {
	if gs.Paused {
		return false, ReasonPaused
	}
	if gs.Animation.Sliding {
		return false, ReasonSliding
	}

	newX, newY := gs.Player.X+dx, gs.Player.Y+dy
	if !gs.InBounds(newX, newY) {
		return false, ReasonOutOfBounds
	}

	gs.Player.X = newX
	gs.Player.Y = newY

	gs.Animation.TargetX = float64(newX * gs.TileSize)
	gs.Animation.TargetY = float64(newY * gs.TileSize)
	gs.Animation.Sliding = true

	return true, ReasonOK
}

// StepSlide moves the drawn position one step toward the target and reports
// whether the slide finished on this step.
func (gs *GameState) StepSlide(step float64) bool {
	a := &gs.Animation
	if !a.Sliding {
		return false
	}

	a.DrawX = approach(a.DrawX, a.TargetX, step)
	a.DrawY = approach(a.DrawY, a.TargetY, step)

	if a.DrawX == a.TargetX && a.DrawY == a.TargetY {
		a.Sliding = false
		return true
	}
	return false
}

// SnapAnimation places the drawn position on the logical cell
func (gs *GameState) SnapAnimation() {
	x := float64(gs.Player.X * gs.TileSize)
	y := float64(gs.Player.Y * gs.TileSize)
	gs.Animation = Animation{DrawX: x, DrawY: y, TargetX: x, TargetY: y}
}

// approach moves cur toward target by step, snapping once closer than step
func approach(cur, target, step float64) float64 {
	if math.Abs(cur-target) < step {
		return target
	}
	if cur < target {
		return cur + step
	}
	return cur - step
}

// AddMoveToHistory adds a move to the game's move history
func (gs *GameState) AddMoveToHistory(action string, fromPos, toPos Position, success bool, reason string) {
	entry := MoveHistoryEntry{
		Action:       action,
		FromPosition: fromPos,
		ToPosition:   toPos,
		Success:      success,
		Reason:       reason,
		Timestamp:    time.Now().Unix(),
		MoveNumber:   gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}

// Clone returns a deep copy of the state that is safe to hand to other goroutines
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.Notes = append([]Note(nil), gs.Notes...)
	c.MoveHistory = append([]MoveHistoryEntry{}, gs.MoveHistory...)
	c.CurrentMoves = append([]MoveHistoryEntry{}, gs.CurrentMoves...)
	return &c
}
