package utils

import (
	"math"
	"testing"
	"time"
)

func TestStatsUpdate(t *testing.T) {
	start := time.Unix(1000, 0)
	s := NewStats(start)

	s.Update(10, 50, 100, start.Add(time.Second))
	if s.GenerationsPerSecond != 10 {
		t.Errorf("GenerationsPerSecond = %v, want 10", s.GenerationsPerSecond)
	}
	if s.Density != 50 {
		t.Errorf("Density = %v, want 50", s.Density)
	}
	if s.AveragePopulation != 50 {
		t.Errorf("AveragePopulation = %v, want 50", s.AveragePopulation)
	}

	s.Update(15, 10, 100, start.Add(2*time.Second))
	if s.GenerationsPerSecond != 5 {
		t.Errorf("GenerationsPerSecond = %v, want 5", s.GenerationsPerSecond)
	}
	if math.Abs(s.AveragePopulation-46) > 1e-9 {
		t.Errorf("AveragePopulation = %v, want 46", s.AveragePopulation)
	}
	if s.PeakPopulation != 50 || s.Population != 10 || s.TotalGenerations != 15 {
		t.Errorf("stats = %+v", s)
	}

	s.Reset(start)
	if s.TotalGenerations != 0 || s.PeakPopulation != 0 {
		t.Errorf("Reset left %+v", s)
	}
}

func TestCycleDetector(t *testing.T) {
	d := NewCycleDetector(3)

	for _, h := range []string{"a", "b", "c"} {
		if d.Observe(h) {
			t.Fatalf("Observe(%q) reported a repeat", h)
		}
	}
	if !d.Observe("b") {
		t.Fatal("period-2 repeat not detected")
	}
	if !d.Observe("b") {
		t.Fatal("still life not detected")
	}
	if d.Streak() != 2 {
		t.Fatalf("Streak() = %d, want 2", d.Streak())
	}

	// "a" has fallen out of the window
	if d.Observe("a") {
		t.Fatal("repeat outside window reported")
	}
	if d.Streak() != 0 {
		t.Fatalf("Streak() = %d after fresh state, want 0", d.Streak())
	}

	d.Reset()
	if d.Observe("b") {
		t.Fatal("history survived Reset")
	}
}
