// Package loop drives live sessions forward in real time.
package loop

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/notehunt/game/service"
)

const (
	DefaultRate = 30
	// maxStep bounds dt after a stall so timers never jump by seconds
	maxStep = 250 * time.Millisecond
)

// Ticker advances every session by one frame
type Ticker interface {
	Tick(ctx context.Context, dt time.Duration) []service.SessionUpdate
}

// Publisher receives the sessions that changed on a frame
type Publisher interface {
	Publish(update service.SessionUpdate)
}

// Runner calls Tick at a fixed rate and publishes the results
type Runner struct {
	game Ticker
	pub  Publisher
	rate int
	now  func() time.Time
}

// NewRunner creates a runner ticking rate times per second. A non-positive
// rate selects DefaultRate. pub may be nil.
func NewRunner(game Ticker, pub Publisher, rate int) *Runner {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Runner{game: game, pub: pub, rate: rate, now: time.Now}
}

// Interval is the time between frames
func (r *Runner) Interval() time.Duration {
	return time.Second / time.Duration(r.rate)
}

// Step runs a single frame and returns how many sessions changed
func (r *Runner) Step(ctx context.Context, dt time.Duration) int {
	if dt > maxStep {
		dt = maxStep
	}
	updates := r.game.Tick(ctx, dt)
	if r.pub != nil {
		for _, u := range updates {
			r.pub.Publish(u)
		}
	}
	return len(updates)
}

// Run ticks until ctx is cancelled. dt is the measured wall time between
// frames.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval())
	defer ticker.Stop()

	log.Info().Int("rate", r.rate).Msg("frame runner started")
	last := r.now()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("frame runner stopped")
			return ctx.Err()
		case <-ticker.C:
			now := r.now()
			r.Step(ctx, now.Sub(last))
			last = now
		}
	}
}

// Every calls fn on a fixed interval until ctx is cancelled. It is used for
// housekeeping such as session eviction and periodic saves.
func Every(ctx context.Context, interval time.Duration, name string, fn func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(); err != nil {
				log.Warn().Err(err).Str("task", name).Msg("periodic task failed")
			}
		}
	}
}
