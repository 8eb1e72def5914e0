//go:build !ebiten

package gui

import (
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life-engine/engine"
	"github.com/sheikhrachel/go-life-engine/model"
)

// Run always fails in headless builds.
func Run(*engine.Scheduler, *model.Grid, Options) error {
	return errors.New("[gui.Run] the window frontend requires building with the 'ebiten' tag")
}
