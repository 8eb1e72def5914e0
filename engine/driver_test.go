package engine

import (
	"context"
	"testing"
	"time"

	"github.com/sheikhrachel/go-life-engine/model"
)

func TestDriverRunsUntilFrameFuncStops(t *testing.T) {
	grid := model.NewGrid(5, 5)
	cfg := DefaultConfig()
	cfg.MaxRate = 1000
	cfg.TargetRate = 1000
	s := NewScheduler(grid, cfg, nil, nil)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d := NewDriver(s, time.Millisecond, func(TickResult) bool {
		return s.Generation() < 3
	}, nil)
	if err := d.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if ctx.Err() != nil {
		t.Fatal("driver ran until timeout")
	}
	if s.Generation() < 3 {
		t.Fatalf("generation = %d, want >= 3", s.Generation())
	}
}

func TestDriverStopsOnCancel(t *testing.T) {
	s := NewScheduler(model.NewGrid(5, 5), DefaultConfig(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewDriver(s, 0, nil, nil).Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil on cancel", err)
	}
}
