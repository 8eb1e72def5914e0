// Package engine drives a grid through generations in real time.
//
// The Scheduler is fed host frame timestamps through OnTick and decides how
// many generations each frame should compute. It is not safe for concurrent
// use: exactly one goroutine (the host's frame loop) may call into it.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life-engine/model"
)

// SimulationError reports a failure raised while computing a generation.
// Generation is the generation that was being computed.
type SimulationError struct {
	Generation int
	Err        error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation failed computing generation %d: %v", e.Generation, e.Err)
}

func (e *SimulationError) Unwrap() error { return e.Err }

// Automaton is the grid surface the scheduler drives. *model.Grid implements it.
type Automaton interface {
	ComputeNextGeneration() error
	CountAliveCells() int
	CellCount() int
	Reset()
	Resize(rows, cols int)
}

// Config holds the scheduler settings.
type Config struct {
	TargetRate int
	MinRate    int
	MaxRate    int
	Device     DeviceClass
	Budget     StepBudget
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		TargetRate: 10,
		MinRate:    1,
		MaxRate:    60,
		Device:     Desktop,
		Budget:     DefaultStepBudget(),
	}
}

// TickResult reports what a single OnTick call did.
type TickResult struct {
	Steps        int
	RedrawDue    bool
	AnalyticsDue bool
	Err          error
}

// Scheduler advances an Automaton at a target rate of generations per second.
type Scheduler struct {
	grid   Automaton
	bus    *model.Bus
	logger *slog.Logger

	minRate    int
	maxRate    int
	targetRate int
	device     DeviceClass
	budget     StepBudget

	running    bool
	anchored   bool
	lastTick   time.Duration
	generation int
	tickCount  int

	maxStepsPerTick int
	analyticsEvery  int
}

// NewScheduler creates a paused scheduler that owns grid. It panics if grid is
// nil; a nil bus drops notifications and a nil logger discards output.
func NewScheduler(grid Automaton, cfg Config, bus *model.Bus, logger *slog.Logger) *Scheduler {
	if grid == nil {
		panic("engine.NewScheduler requires a non-nil grid")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MinRate < 1 {
		cfg.MinRate = 1
	}
	if cfg.MaxRate < cfg.MinRate {
		cfg.MaxRate = cfg.MinRate
	}

	s := &Scheduler{
		grid:    grid,
		bus:     bus,
		logger:  logger,
		minRate: cfg.MinRate,
		maxRate: cfg.MaxRate,
		device:  cfg.Device,
		budget:  cfg.Budget,
	}
	s.targetRate = s.clampRate(cfg.TargetRate)
	s.recomputeBudget()

	// Resizes issued straight on the grid still discard progress
	bus.Subscribe(model.EventResized, func(model.Event) { s.discardProgress() })
	return s
}

// Grid returns the automaton the scheduler drives.
func (s *Scheduler) Grid() Automaton { return s.grid }

// Running reports whether automatic advancement is active.
func (s *Scheduler) Running() bool { return s.running }

// Generation returns the number of generations computed since the last reset.
func (s *Scheduler) Generation() int { return s.generation }

// TargetRate returns the target generations per second.
func (s *Scheduler) TargetRate() int { return s.targetRate }

// MaxStepsPerTick returns the current catch-up cap.
func (s *Scheduler) MaxStepsPerTick() int { return s.maxStepsPerTick }

// AnalyticsEvery returns the current analytics divisor.
func (s *Scheduler) AnalyticsEvery() int { return s.analyticsEvery }

// Start moves the scheduler to running. The next tick anchors the clock.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.anchored = false
	s.tickCount = 0
	s.logger.Debug("scheduler started", "rate", s.targetRate, "generation", s.generation)
	s.bus.Publish(model.Event{Kind: model.EventStateChanged, Running: true, Generation: s.generation})
}

// Pause stops automatic advancement. Ticks delivered while paused are ignored.
func (s *Scheduler) Pause() {
	if !s.running {
		return
	}
	s.running = false
	s.anchored = false
	s.logger.Debug("scheduler paused", "generation", s.generation)
	s.bus.Publish(model.Event{Kind: model.EventStateChanged, Running: false, Generation: s.generation})
}

// Reset pauses, zeroes the generation count and clears the grid.
func (s *Scheduler) Reset() {
	s.Pause()
	s.generation = 0
	s.tickCount = 0
	s.grid.Reset()
}

// Resize reshapes the grid. The generation count is discarded.
func (s *Scheduler) Resize(rows, cols int) {
	s.grid.Resize(rows, cols)
	s.discardProgress()
}

func (s *Scheduler) discardProgress() {
	s.generation = 0
	s.tickCount = 0
	s.anchored = false
	s.recomputeBudget()
}

// SetDeviceClass switches the step budget profile.
func (s *Scheduler) SetDeviceClass(d DeviceClass) {
	s.device = d
	s.recomputeBudget()
}

// UpdateRate sets the target rate, clamped to the configured bounds, and
// returns the rate actually applied.
func (s *Scheduler) UpdateRate(rate int) int {
	applied := s.clampRate(rate)
	if applied != rate {
		s.logger.Debug("rate clamped", "requested", rate, "rate", applied)
	}
	s.targetRate = applied
	return applied
}

// Step advances exactly one generation regardless of state or timing.
func (s *Scheduler) Step() error {
	if _, err := s.advance(1); err != nil {
		s.fail(err)
		return err
	}
	return nil
}

// OnTick is the host frame callback. now is any monotonic clock reading; only
// differences between calls matter.
func (s *Scheduler) OnTick(now time.Duration) TickResult {
	if !s.running {
		return TickResult{}
	}

	// First tick after Start only anchors the clock
	if !s.anchored {
		s.lastTick = now
		s.anchored = true
		return TickResult{}
	}

	interval := s.frameInterval()
	elapsed := now - s.lastTick
	if elapsed < interval {
		return TickResult{}
	}

	due := int(elapsed / interval)
	steps := min(due, s.maxStepsPerTick)

	taken, err := s.advance(steps)
	if err != nil {
		s.fail(err)
		return TickResult{Steps: taken, RedrawDue: taken > 0, Err: err}
	}

	// Frames beyond the cap stay owed and drain on later ticks
	s.lastTick += time.Duration(steps) * interval
	if due > steps {
		s.logger.Debug("catch-up capped", "due", due, "steps", steps)
	}

	s.tickCount++
	return TickResult{
		Steps:        steps,
		RedrawDue:    true,
		AnalyticsDue: s.tickCount%s.analyticsEvery == 0,
	}
}

func (s *Scheduler) advance(steps int) (taken int, err error) {
	for taken < steps {
		if err = s.computeGeneration(); err != nil {
			return taken, err
		}
		taken++
		s.generation++
		s.bus.Publish(model.Event{
			Kind:       model.EventGenerationAdvanced,
			Generation: s.generation,
			AliveCells: s.grid.CountAliveCells(),
		})
	}
	return taken, nil
}

func (s *Scheduler) computeGeneration() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &SimulationError{Generation: s.generation + 1, Err: errors.Errorf("[computeGeneration] panic: %v", r)}
		}
	}()

	if err := s.grid.ComputeNextGeneration(); err != nil {
		return &SimulationError{Generation: s.generation + 1, Err: err}
	}
	return nil
}

func (s *Scheduler) fail(err error) {
	s.logger.Error("generation failed, pausing", "generation", s.generation, "error", err)
	s.bus.Publish(model.Event{Kind: model.EventSimulationError, Generation: s.generation, Err: err})
	s.Pause()
}

func (s *Scheduler) frameInterval() time.Duration {
	return time.Second / time.Duration(s.targetRate)
}

func (s *Scheduler) clampRate(rate int) int {
	return min(max(rate, s.minRate), s.maxRate)
}

func (s *Scheduler) recomputeBudget() {
	cells := s.grid.CellCount()
	s.maxStepsPerTick = s.budget.MaxStepsPerTick(cells, s.device)
	s.analyticsEvery = s.budget.AnalyticsDivisor(cells, s.device)
}
