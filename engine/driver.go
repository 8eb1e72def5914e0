package engine

import (
	"context"
	"log/slog"
	"time"
)

// DefaultFrameInterval approximates a 60Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameFunc is called after every host frame with the scheduler's verdict.
// Returning false stops the driver.
type FrameFunc func(TickResult) bool

// Driver stands in for a display refresh callback when there is no window
// system: it ticks the scheduler from a time.Ticker on a single goroutine.
type Driver struct {
	scheduler *Scheduler
	interval  time.Duration
	onFrame   FrameFunc
	logger    *slog.Logger

	now func() time.Time
}

// NewDriver creates a driver ticking s every interval.
func NewDriver(s *Scheduler, interval time.Duration, onFrame FrameFunc, logger *slog.Logger) *Driver {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{
		scheduler: s,
		interval:  interval,
		onFrame:   onFrame,
		logger:    logger,
		now:       time.Now,
	}
}

// Run delivers frames until ctx is cancelled or the frame callback returns false.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	start := d.now()
	frames := 0
	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("driver stopped", "frames", frames, "generation", d.scheduler.Generation())
			return nil
		case t := <-ticker.C:
			frames++
			res := d.scheduler.OnTick(t.Sub(start))
			if d.onFrame != nil && !d.onFrame(res) {
				d.logger.Debug("driver finished", "frames", frames, "generation", d.scheduler.Generation())
				return nil
			}
		}
	}
}
