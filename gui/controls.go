package gui

import (
	"log/slog"

	"github.com/sheikhrachel/go-life-engine/engine"
	"github.com/sheikhrachel/go-life-engine/model"
)

// manualStep advances one generation on request. The scheduler has already
// paused and published the failure; the error is only logged here.
func manualStep(s *engine.Scheduler, logger *slog.Logger) error {
	err := s.Step()
	if err != nil {
		logger.Error("manual step failed", "generation", s.Generation(), "error", err)
	}
	return err
}

// nextTopology cycles between the two boundary topologies.
func nextTopology(t model.Topology) model.Topology {
	if t == model.Finite {
		return model.Toroidal
	}
	return model.Finite
}
