package engine

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life-engine/model"
)

type fakeAutomaton struct {
	cells    int
	computed int
	resets   int
	failAt   int // 1-based call that returns an error, 0 = never
	panicAt  int
}

var errBoom = errors.New("boom")

func (f *fakeAutomaton) ComputeNextGeneration() error {
	call := f.computed + 1
	if f.panicAt == call {
		panic("kaboom")
	}
	if f.failAt == call {
		return errBoom
	}
	f.computed++
	return nil
}

func (f *fakeAutomaton) CountAliveCells() int { return f.computed }
func (f *fakeAutomaton) CellCount() int       { return f.cells }
func (f *fakeAutomaton) Reset()               { f.resets++ }
func (f *fakeAutomaton) Resize(rows, cols int) {
	f.cells = rows * cols
}

func newTestScheduler(t *testing.T, grid Automaton, rate int) (*Scheduler, *model.Bus) {
	t.Helper()
	bus := model.NewBus()
	cfg := DefaultConfig()
	cfg.TargetRate = rate
	return NewScheduler(grid, cfg, bus, nil), bus
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestOnTickOneStepPerFrameWithoutDrift(t *testing.T) {
	grid := &fakeAutomaton{cells: 100}
	s, _ := newTestScheduler(t, grid, 10)
	s.Start()

	if res := s.OnTick(ms(5000)); res.Steps != 0 {
		t.Fatalf("anchor tick took %d steps, want 0", res.Steps)
	}
	for i := 1; i <= 100; i++ {
		res := s.OnTick(ms(5000 + i*100))
		if res.Steps != 1 {
			t.Fatalf("tick %d took %d steps, want 1", i, res.Steps)
		}
		if !res.RedrawDue {
			t.Fatalf("tick %d: redraw not due", i)
		}
	}
	if s.Generation() != 100 || grid.computed != 100 {
		t.Fatalf("generation = %d computed = %d, want 100", s.Generation(), grid.computed)
	}
	if s.lastTick != ms(5000+100*100) {
		t.Fatalf("lastTick drifted to %v", s.lastTick)
	}
}

func TestOnTickRateLimits(t *testing.T) {
	grid := &fakeAutomaton{cells: 100}
	s, _ := newTestScheduler(t, grid, 10)
	s.Start()

	s.OnTick(0)
	if res := s.OnTick(ms(99)); res.Steps != 0 || res.RedrawDue {
		t.Fatalf("early tick = %+v, want no-op", res)
	}
	if res := s.OnTick(ms(100)); res.Steps != 1 {
		t.Fatalf("due tick took %d steps, want 1", res.Steps)
	}
}

func TestOnTickKeepsFractionalLeftover(t *testing.T) {
	grid := &fakeAutomaton{cells: 100}
	s, _ := newTestScheduler(t, grid, 10)
	s.Start()

	s.OnTick(0)
	if res := s.OnTick(ms(150)); res.Steps != 1 {
		t.Fatalf("first tick took %d steps, want 1", res.Steps)
	}
	// 50ms carried over from the previous tick
	if res := s.OnTick(ms(200)); res.Steps != 1 {
		t.Fatalf("second tick took %d steps, want 1", res.Steps)
	}
}

func TestOnTickCatchesUp(t *testing.T) {
	grid := &fakeAutomaton{cells: 100}
	s, _ := newTestScheduler(t, grid, 10)
	s.Start()

	s.OnTick(0)
	if res := s.OnTick(ms(350)); res.Steps != 3 {
		t.Fatalf("catch-up tick took %d steps, want 3", res.Steps)
	}
	if res := s.OnTick(ms(400)); res.Steps != 1 {
		t.Fatalf("next tick took %d steps, want 1", res.Steps)
	}
	if s.Generation() != 4 {
		t.Fatalf("generation = %d, want 4", s.Generation())
	}
}

func TestOnTickCapsCatchUp(t *testing.T) {
	grid := &fakeAutomaton{cells: 100}
	s, _ := newTestScheduler(t, grid, 10)
	s.Start()

	s.OnTick(0)
	if res := s.OnTick(ms(1000)); res.Steps != 5 || s.MaxStepsPerTick() != 5 {
		t.Fatalf("stalled tick took %d steps, want cap 5", res.Steps)
	}
	// The remaining backlog drains at the cap on the next tick
	if res := s.OnTick(ms(1016)); res.Steps != 5 {
		t.Fatalf("tick after stall took %d steps, want 5", res.Steps)
	}
	if s.Generation() != 10 {
		t.Fatalf("generation = %d, want 10", s.Generation())
	}
	if res := s.OnTick(ms(1050)); res.Steps != 0 {
		t.Fatalf("caught-up tick took %d steps, want 0", res.Steps)
	}
	if res := s.OnTick(ms(1100)); res.Steps != 1 {
		t.Fatalf("steady tick took %d steps, want 1", res.Steps)
	}
}

func TestOnTickLongStallDrainsOverSeveralTicks(t *testing.T) {
	grid := &fakeAutomaton{cells: 100}
	s, _ := newTestScheduler(t, grid, 10)
	s.Start()

	s.OnTick(0)
	// 2s at 10/s owes 20 generations, at most 5 per tick
	for i, want := range []int{5, 5, 5, 5, 0} {
		if res := s.OnTick(ms(2000 + i)); res.Steps != want {
			t.Fatalf("tick %d took %d steps, want %d", i, res.Steps, want)
		}
	}
	if s.Generation() != 20 {
		t.Fatalf("generation = %d, want 20", s.Generation())
	}
}

func TestOnTickIgnoredWhilePaused(t *testing.T) {
	grid := &fakeAutomaton{cells: 100}
	s, _ := newTestScheduler(t, grid, 10)

	if res := s.OnTick(ms(1000)); res.Steps != 0 {
		t.Fatal("paused scheduler stepped")
	}

	s.Start()
	s.OnTick(0)
	s.OnTick(ms(100))
	s.Pause()
	if res := s.OnTick(ms(200)); res.Steps != 0 {
		t.Fatal("tick after pause stepped")
	}

	// Restart re-anchors instead of replaying the paused time
	s.Start()
	if res := s.OnTick(ms(10_000)); res.Steps != 0 {
		t.Fatalf("first tick after restart took %d steps, want 0", res.Steps)
	}
	if res := s.OnTick(ms(10_100)); res.Steps != 1 {
		t.Fatalf("second tick after restart took %d steps, want 1", res.Steps)
	}
}

func TestStartPauseIdempotent(t *testing.T) {
	grid := &fakeAutomaton{cells: 100}
	s, bus := newTestScheduler(t, grid, 10)
	var states []bool
	bus.Subscribe(model.EventStateChanged, func(ev model.Event) { states = append(states, ev.Running) })

	s.Pause()
	s.Start()
	s.Start()
	s.Pause()
	s.Pause()

	if len(states) != 2 || !states[0] || states[1] {
		t.Fatalf("state events = %v, want [true false]", states)
	}
}

func TestOnTickErrorPauses(t *testing.T) {
	grid := &fakeAutomaton{cells: 100, failAt: 2}
	s, bus := newTestScheduler(t, grid, 10)
	var errs []error
	bus.Subscribe(model.EventSimulationError, func(ev model.Event) { errs = append(errs, ev.Err) })

	s.Start()
	s.OnTick(0)
	res := s.OnTick(ms(300))

	if s.Running() {
		t.Fatal("scheduler still running after failure")
	}
	if res.Steps != 1 || res.Err == nil {
		t.Fatalf("result = %+v, want 1 step and an error", res)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d error events, want 1", len(errs))
	}
	var simErr *SimulationError
	if !errors.As(errs[0], &simErr) || simErr.Generation != 2 {
		t.Fatalf("error = %v, want SimulationError at generation 2", errs[0])
	}
	if !errors.Is(errs[0], errBoom) {
		t.Fatalf("error = %v, want cause errBoom", errs[0])
	}
	if s.Generation() != 1 {
		t.Fatalf("generation = %d, want 1", s.Generation())
	}
}

func TestOnTickPanicPauses(t *testing.T) {
	grid := &fakeAutomaton{cells: 100, panicAt: 1}
	s, bus := newTestScheduler(t, grid, 10)
	var got error
	bus.Subscribe(model.EventSimulationError, func(ev model.Event) { got = ev.Err })

	s.Start()
	s.OnTick(0)
	res := s.OnTick(ms(100))

	if s.Running() {
		t.Fatal("scheduler still running after panic")
	}
	if res.Err == nil || got == nil {
		t.Fatal("panic not reported")
	}
	if res.RedrawDue {
		t.Fatal("redraw due although no generation was computed")
	}
}

func TestStepAdvancesOneGeneration(t *testing.T) {
	grid := model.NewGrid(5, 5, model.WithTopology(model.Finite))
	grid.SetCell(2, 1, 1)
	grid.SetCell(2, 2, 1)
	grid.SetCell(2, 3, 1)

	s, bus := newTestScheduler(t, grid, 10)
	var events []model.Event
	bus.Subscribe(model.EventGenerationAdvanced, func(ev model.Event) { events = append(events, ev) })

	if s.Grid() != grid {
		t.Fatal("Grid() should return the driven grid")
	}
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Running() {
		t.Fatal("Step started the scheduler")
	}
	if s.Generation() != 1 {
		t.Fatalf("generation = %d, want 1", s.Generation())
	}
	if len(events) != 1 || events[0].Generation != 1 || events[0].AliveCells != 3 {
		t.Fatalf("events = %+v", events)
	}
	if grid.Cell(1, 2) != 1 || grid.Cell(3, 2) != 1 {
		t.Fatal("blinker did not rotate")
	}
}

func TestStepErrorReported(t *testing.T) {
	grid := &fakeAutomaton{cells: 100, failAt: 1}
	s, _ := newTestScheduler(t, grid, 10)
	s.Start()

	if err := s.Step(); !errors.Is(err, errBoom) {
		t.Fatalf("Step() error = %v, want errBoom", err)
	}
	if s.Running() {
		t.Fatal("failed step left scheduler running")
	}
}

func TestResetClearsState(t *testing.T) {
	grid := model.NewGrid(5, 5)
	grid.SetCell(1, 1, 1)
	s, _ := newTestScheduler(t, grid, 10)
	s.Step()
	s.Start()

	s.Reset()
	if s.Running() || s.Generation() != 0 || grid.CountAliveCells() != 0 {
		t.Fatalf("after reset running=%v generation=%d alive=%d", s.Running(), s.Generation(), grid.CountAliveCells())
	}
	s.Reset()
	if s.Generation() != 0 || grid.CountAliveCells() != 0 {
		t.Fatal("second reset changed state")
	}
}

func TestResizeDiscardsGeneration(t *testing.T) {
	grid := model.NewGrid(10, 10)
	grid.SetCell(1, 1, 1)
	s, _ := newTestScheduler(t, grid, 10)
	s.Step()
	s.Step()

	s.Resize(10, 10)
	if s.Generation() != 0 {
		t.Fatalf("generation = %d after same-size resize, want 0", s.Generation())
	}
	if grid.CountAliveCells() != 0 {
		t.Fatal("cells survived resize")
	}
}

func TestGenerationPublishesAdvancedNotChanged(t *testing.T) {
	bus := model.NewBus()
	grid := model.NewGrid(5, 5, model.WithBus(bus))
	grid.SetCell(2, 2, 1)
	s := NewScheduler(grid, DefaultConfig(), bus, nil)

	counts := map[model.EventKind]int{}
	bus.SubscribeAll(func(ev model.Event) { counts[ev.Kind]++ })
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if counts[model.EventGenerationAdvanced] != 1 || counts[model.EventGridChanged] != 0 {
		t.Fatalf("events = %v, want one GenerationAdvanced and no GridChanged", counts)
	}
}

func TestGridResizeDiscardsGeneration(t *testing.T) {
	bus := model.NewBus()
	grid := model.NewGrid(10, 10, model.WithBus(bus))
	grid.SetCell(1, 1, 1)
	s := NewScheduler(grid, DefaultConfig(), bus, nil)
	s.Step()
	s.Step()

	// Resize issued on the grid itself, bypassing the scheduler
	s.Grid().Resize(20, 20)
	if s.Generation() != 0 {
		t.Fatalf("generation = %d after grid resize, want 0", s.Generation())
	}
	if s.MaxStepsPerTick() != DefaultStepBudget().MaxStepsPerTick(400, Desktop) {
		t.Fatalf("budget not recomputed: %d", s.MaxStepsPerTick())
	}
}

func TestResizeRecomputesBudget(t *testing.T) {
	grid := &fakeAutomaton{cells: 100}
	s, _ := newTestScheduler(t, grid, 10)
	if s.MaxStepsPerTick() != 5 {
		t.Fatalf("small grid cap = %d, want 5", s.MaxStepsPerTick())
	}

	s.Resize(200, 200)
	if s.MaxStepsPerTick() != 1 || s.AnalyticsEvery() != 4 {
		t.Fatalf("huge grid cap=%d analytics=%d, want 1 and 4", s.MaxStepsPerTick(), s.AnalyticsEvery())
	}

	s.Resize(10, 10)
	s.SetDeviceClass(Constrained)
	if s.MaxStepsPerTick() != 2 || s.AnalyticsEvery() != 2 {
		t.Fatalf("constrained cap=%d analytics=%d, want 2 and 2", s.MaxStepsPerTick(), s.AnalyticsEvery())
	}
}

func TestAnalyticsDivisor(t *testing.T) {
	grid := &fakeAutomaton{cells: 100}
	cfg := DefaultConfig()
	cfg.Budget.AnalyticsEvery = 3
	s := NewScheduler(grid, cfg, nil, nil)
	s.Start()
	s.OnTick(0)

	var due []bool
	for i := 1; i <= 6; i++ {
		due = append(due, s.OnTick(ms(i*100)).AnalyticsDue)
	}
	want := []bool{false, false, true, false, false, true}
	for i := range want {
		if due[i] != want[i] {
			t.Fatalf("analytics due = %v, want %v", due, want)
		}
	}
}

func TestUpdateRateClamps(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeAutomaton{cells: 100}, 10)

	if got := s.UpdateRate(0); got != 1 {
		t.Errorf("UpdateRate(0) = %d, want 1", got)
	}
	if got := s.UpdateRate(500); got != 60 {
		t.Errorf("UpdateRate(500) = %d, want 60", got)
	}
	if got := s.UpdateRate(25); got != 25 || s.TargetRate() != 25 {
		t.Errorf("UpdateRate(25) = %d, TargetRate() = %d", got, s.TargetRate())
	}
}

func TestNewSchedulerRequiresGrid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewScheduler(nil) did not panic")
		}
	}()
	NewScheduler(nil, DefaultConfig(), nil, nil)
}
