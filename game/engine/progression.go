package engine

import "fmt"

// ActiveNote returns the note the player is currently looking for
func (gs *GameState) ActiveNote() (*Note, bool) {
	if gs.Completed || gs.CurrentNote < 0 || gs.CurrentNote >= len(gs.Notes) {
		return nil, false
	}
	return &gs.Notes[gs.CurrentNote], true
}

// collectNotes runs after a slide completes. The active note is collected only
// when the player stands exactly on it and the game is not paused.
func (e *GameEngine) collectNotes() bool {
	gs := e.state
	if gs.Paused {
		return false
	}

	note, ok := gs.ActiveNote()
	if !ok || note.Collected {
		return false
	}
	if gs.Player != note.Pos() {
		return false
	}

	note.Collected = true
	gs.NotesCollected++
	gs.Message = fmt.Sprintf("Note %d of %d found!", note.Index+1, len(gs.Notes))
	e.emit(Event{
		Type:      EventNoteCollected,
		Message:   gs.Message,
		NoteIndex: note.Index,
		Image:     note.Image,
		Position:  note.Pos(),
	})

	e.openPopup(note)
	return true
}

// advanceProgression runs once the popup of the active note is dismissed
func (e *GameEngine) advanceProgression() {
	gs := e.state
	gs.CurrentNote++

	if gs.CurrentNote < len(gs.Notes) {
		next := gs.Notes[gs.CurrentNote]
		gs.Message = fmt.Sprintf("Find note %d of %d", next.Index+1, len(gs.Notes))
		e.emit(Event{
			Type:      EventNoteActivated,
			Message:   gs.Message,
			NoteIndex: next.Index,
			Position:  next.Pos(),
		})
		return
	}

	gs.Completed = true
	e.startCarousel()
}
