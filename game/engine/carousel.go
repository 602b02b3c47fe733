package engine

import "time"

// startCarousel shows the final looping display, beginning with the first image
func (e *GameEngine) startCarousel() {
	gs := e.state
	gs.Paused = true
	gs.Carousel = Carousel{
		Visible: true,
		Index:   0,
		Image:   e.carouselImage(0),
		Text:    e.config.FinalMessage,
	}
	gs.Message = e.config.FinalMessage
	e.emit(Event{Type: EventCarouselStarted, Message: gs.Message, Image: gs.Carousel.Image})
}

// advanceCarousel cycles images on a fixed interval, wrapping to the first
func (e *GameEngine) advanceCarousel(dt time.Duration) bool {
	c := &e.state.Carousel
	if !c.Visible {
		return false
	}

	interval := e.config.CarouselInterval()
	n := len(e.config.Images)
	if interval <= 0 || n == 0 {
		return false
	}

	changed := false
	c.Elapsed += dt
	for c.Elapsed >= interval {
		c.Elapsed -= interval
		c.Index = (c.Index + 1) % n
		c.Image = e.carouselImage(c.Index)
		changed = true
		e.emit(Event{Type: EventCarouselAdvanced, NoteIndex: c.Index, Image: c.Image})
	}
	return changed
}

// CloseCarousel stops the carousel. The board stays playable afterwards but
// there is nothing left to collect.
func (e *GameEngine) CloseCarousel() error {
	gs := e.state
	if !gs.Carousel.Visible {
		return ErrCarouselNotVisible
	}

	gs.Carousel.Visible = false
	gs.Carousel.Elapsed = 0
	gs.Paused = false
	gs.Finished = true
	e.emit(Event{Type: EventCarouselClosed})
	return nil
}

func (e *GameEngine) carouselImage(i int) string {
	if i < 0 || i >= len(e.config.Images) {
		return ""
	}
	return e.config.Images[i]
}
