// Package autoplay plays Note Hunt sessions through the REST API. It walks
// the Manhattan route to each active note (horizontal first), lets the popup
// timers run until the message shows, closes it and moves on.
package autoplay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/notehunt/game/engine"
)

// Defaults for Options
const (
	DefaultAdvanceStep = 250 * time.Millisecond
	DefaultMaxSteps    = 1000
)

// ErrStuck is returned when a step makes no progress
var ErrStuck = errors.New("autoplay made no progress")

// Options tunes a run
type Options struct {
	// SessionID resumes an existing session; empty creates one with ConfigID
	SessionID string
	ConfigID  string
	// Reset restarts the session before playing
	Reset bool
	// AdvanceStep is how much game time each advance call runs
	AdvanceStep time.Duration
	// MaxSteps caps the number of API calls
	MaxSteps int
	// Delay pauses between calls so a watcher can follow along
	Delay time.Duration
	// KeepCarousel leaves the final carousel running
	KeepCarousel bool
}

// Summary describes a finished run
type Summary struct {
	SessionID string
	Moves     int
	Notes     int
	Advances  int
	Steps     int
	Completed bool
	Elapsed   time.Duration
}

// Player drives one session to completion
type Player struct {
	client *Client
	opts   Options
}

// NewPlayer returns a player using client
func NewPlayer(client *Client, opts Options) *Player {
	if opts.AdvanceStep <= 0 {
		opts.AdvanceStep = DefaultAdvanceStep
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &Player{client: client, opts: opts}
}

// Play runs until every note is collected, ctx ends or MaxSteps is reached
func (p *Player) Play(ctx context.Context) (*Summary, error) {
	start := time.Now()
	sum := &Summary{SessionID: p.opts.SessionID}

	var state *engine.GameState
	var err error
	if sum.SessionID == "" {
		info, err := p.client.CreateSession(ctx, p.opts.ConfigID)
		if err != nil {
			return nil, err
		}
		sum.SessionID = info.ID
		state = info.GameState
		log.Info().Str("session", info.ID).Str("config", info.ConfigID).Msg("autoplay session created")
	} else {
		if state, err = p.client.State(ctx, sum.SessionID); err != nil {
			return nil, err
		}
		log.Info().Str("session", sum.SessionID).Msg("autoplay resuming session")
	}

	if p.opts.Reset {
		if state, err = p.client.Reset(ctx, sum.SessionID); err != nil {
			return nil, err
		}
	}

	finish := func(err error) (*Summary, error) {
		sum.Elapsed = time.Since(start)
		sum.Notes = state.NotesCollected
		sum.Completed = state.Completed
		return sum, err
	}

	for sum.Steps < p.opts.MaxSteps {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		sum.Steps++

		switch {
		case state.Carousel.Visible:
			if p.opts.KeepCarousel {
				return finish(nil)
			}
			result, err := p.client.CloseCarousel(ctx, sum.SessionID)
			if err != nil {
				return finish(err)
			}
			state = result.GameState
			return finish(nil)

		case state.Completed:
			return finish(nil)

		case state.Popup.Visible():
			if state.Popup.Phase == engine.PopupMessage {
				result, err := p.client.ClosePopup(ctx, sum.SessionID)
				if err != nil {
					return finish(err)
				}
				log.Info().
					Str("session", sum.SessionID).
					Int("note", state.Popup.NoteIndex+1).
					Str("message", state.Popup.Message).
					Msg("note read")
				state = result.GameState
				break
			}
			result, err := p.client.Advance(ctx, sum.SessionID, p.opts.AdvanceStep)
			if err != nil {
				return finish(err)
			}
			sum.Advances++
			state = result.GameState

		default:
			note, ok := state.ActiveNote()
			if !ok {
				return finish(fmt.Errorf("%w: no active note", ErrStuck))
			}
			route := engine.Route(state.Player, note.Pos())
			if len(route) == 0 {
				// Standing on the note with the slide still running
				result, err := p.client.Advance(ctx, sum.SessionID, engine.FrameTime)
				if err != nil {
					return finish(err)
				}
				if !result.GameState.Popup.Visible() && result.GameState.CurrentNote == state.CurrentNote {
					return finish(fmt.Errorf("%w: on note %d without collecting it", ErrStuck, note.Index+1))
				}
				state = result.GameState
				break
			}

			result, err := p.client.BulkMove(ctx, sum.SessionID, route)
			if err != nil {
				return finish(err)
			}
			sum.Moves += result.MovesExecuted
			state = result.GameState
			if result.MovesExecuted == 0 {
				return finish(fmt.Errorf("%w: %s", ErrStuck, result.StoppedReason))
			}
			log.Debug().
				Str("session", sum.SessionID).
				Interface("from", result.StartPos).
				Interface("to", result.EndPos).
				Str("stop", result.StopReasonCode).
				Msg("route walked")
		}

		if p.opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return finish(ctx.Err())
			case <-time.After(p.opts.Delay):
			}
		}
	}

	return finish(fmt.Errorf("%w: gave up after %d steps", ErrStuck, sum.Steps))
}
