package engine

import "time"

// openPopup pauses the game and starts the photo/message sequence for note
func (e *GameEngine) openPopup(note *Note) {
	gs := e.state
	gs.Paused = true
	gs.Popup = Popup{
		Phase:      PopupPhotoFadeIn,
		NoteIndex:  note.Index,
		Image:      note.Image,
		Message:    note.Message,
		PhotoScale: InitialScale,
	}
}

// advancePopup moves the popup timers forward. Transitions are driven by
// fixed delays measured from the moment the popup opened.
func (e *GameEngine) advancePopup(dt time.Duration) bool {
	p := &e.state.Popup
	if !p.Visible() {
		return false
	}

	changed := false
	p.Elapsed += dt

	photoDelay := e.config.PhotoDelay()
	if !p.PhotoVisible && p.Elapsed >= photoDelay {
		p.PhotoVisible = true
		changed = true
		e.emit(Event{Type: EventPhotoShown, NoteIndex: p.NoteIndex, Image: p.Image})
	}

	if p.PhotoVisible && p.PhotoAlpha < 1 {
		progress := 1.0
		if fade := e.config.FadeDuration(); fade > 0 {
			progress = float64(p.Elapsed-photoDelay) / float64(fade)
		}
		if progress > 1 {
			progress = 1
		}
		if progress > p.PhotoAlpha {
			p.PhotoAlpha = progress
			p.PhotoScale = InitialScale + (1-InitialScale)*progress
			changed = true
		}
	}

	if p.Phase != PopupMessage && p.Elapsed >= e.config.MessageDelay() {
		p.Phase = PopupMessage
		p.Blur = true
		p.CloseVisible = true
		changed = true
		e.emit(Event{Type: EventMessageShown, Message: p.Message, NoteIndex: p.NoteIndex})
	}

	return changed
}

// ClosePopup dismisses the note popup. It is only accepted once the dismiss
// control is visible.
func (e *GameEngine) ClosePopup() error {
	gs := e.state
	if gs.Popup.Phase != PopupMessage {
		return ErrPopupNotDismissable
	}

	index := gs.Popup.NoteIndex
	gs.Popup = Popup{Phase: PopupHidden, PhotoScale: InitialScale}
	gs.Paused = false
	e.emit(Event{Type: EventPopupClosed, NoteIndex: index})

	e.advanceProgression()
	return nil
}
