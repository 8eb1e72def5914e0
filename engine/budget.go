package engine

import (
	"strings"

	"github.com/pkg/errors"
)

// DeviceClass describes how much per-frame work the host can absorb.
type DeviceClass int

const (
	// Desktop hosts get the full step budget.
	Desktop DeviceClass = iota
	// Constrained hosts (mobile, low-power) get a reduced one.
	Constrained
)

func (d DeviceClass) String() string {
	if d == Constrained {
		return "constrained"
	}
	return "desktop"
}

// ParseDeviceClass maps "desktop" or "constrained"/"mobile" to a DeviceClass.
func ParseDeviceClass(s string) (DeviceClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desktop":
		return Desktop, nil
	case "constrained", "mobile":
		return Constrained, nil
	}
	return Desktop, errors.Errorf("[ParseDeviceClass] unrecognized device class %q", s)
}

// StepBudget holds the tuning thresholds that bound per-tick work. None of
// these values affect simulation results, only how fast a backlog drains.
type StepBudget struct {
	LargeGridCells int `json:"large_grid_cells" yaml:"large_grid_cells"`
	HugeGridCells  int `json:"huge_grid_cells" yaml:"huge_grid_cells"`

	MaxSteps          int `json:"max_steps" yaml:"max_steps"`
	LargeGridMaxSteps int `json:"large_grid_max_steps" yaml:"large_grid_max_steps"`
	HugeGridMaxSteps  int `json:"huge_grid_max_steps" yaml:"huge_grid_max_steps"`
	// ConstrainedMaxSteps caps the step count on constrained devices.
	ConstrainedMaxSteps int `json:"constrained_max_steps" yaml:"constrained_max_steps"`

	AnalyticsEvery          int `json:"analytics_every" yaml:"analytics_every"`
	LargeGridAnalyticsEvery int `json:"large_grid_analytics_every" yaml:"large_grid_analytics_every"`
	HugeGridAnalyticsEvery  int `json:"huge_grid_analytics_every" yaml:"huge_grid_analytics_every"`
	// ConstrainedAnalyticsFactor multiplies the analytics divisor on constrained devices.
	ConstrainedAnalyticsFactor int `json:"constrained_analytics_factor" yaml:"constrained_analytics_factor"`
}

// DefaultStepBudget returns sensible defaults
func DefaultStepBudget() StepBudget {
	return StepBudget{
		LargeGridCells:             10_000,
		HugeGridCells:              40_000,
		MaxSteps:                   5,
		LargeGridMaxSteps:          3,
		HugeGridMaxSteps:           1,
		ConstrainedMaxSteps:        2,
		AnalyticsEvery:             1,
		LargeGridAnalyticsEvery:    2,
		HugeGridAnalyticsEvery:     4,
		ConstrainedAnalyticsFactor: 2,
	}
}

// MaxStepsPerTick returns the catch-up cap for a grid of the given cell count.
func (b StepBudget) MaxStepsPerTick(cells int, device DeviceClass) int {
	steps := b.MaxSteps
	switch {
	case b.HugeGridCells > 0 && cells >= b.HugeGridCells:
		steps = b.HugeGridMaxSteps
	case b.LargeGridCells > 0 && cells >= b.LargeGridCells:
		steps = b.LargeGridMaxSteps
	}
	if device == Constrained && b.ConstrainedMaxSteps > 0 {
		steps = min(steps, b.ConstrainedMaxSteps)
	}
	return max(steps, 1)
}

// AnalyticsDivisor returns how many stepping ticks pass between analytics refreshes.
func (b StepBudget) AnalyticsDivisor(cells int, device DeviceClass) int {
	every := b.AnalyticsEvery
	switch {
	case b.HugeGridCells > 0 && cells >= b.HugeGridCells:
		every = b.HugeGridAnalyticsEvery
	case b.LargeGridCells > 0 && cells >= b.LargeGridCells:
		every = b.LargeGridAnalyticsEvery
	}
	if device == Constrained && b.ConstrainedAnalyticsFactor > 1 {
		every *= b.ConstrainedAnalyticsFactor
	}
	return max(every, 1)
}
