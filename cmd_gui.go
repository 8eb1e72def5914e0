package main

import (
	"github.com/spf13/cobra"

	"github.com/sheikhrachel/go-life-engine/gui"
	"github.com/sheikhrachel/go-life-engine/utils"
)

func newGUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "Open the simulation in a window (requires the ebiten build tag)",
		Long: `Open the simulation in a window.

Controls: Space start/pause, N step, R reset, T toggle topology,
Up/Down change rate, click to toggle a cell, Q or Esc to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			scale, _ := cmd.Flags().GetInt("scale")

			logger := utils.NewLogger(config.LogLevel, cmd.ErrOrStderr())
			s := newSession(config, logger)
			if err := s.seed(cmd.Context(), patternDBPath(cmd, config)); err != nil {
				return err
			}

			return gui.Run(s.scheduler, s.grid, gui.Options{
				Title:  "life",
				Scale:  scale,
				Logger: logger,
			})
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Int("scale", 8, "Window pixels per cell")
	return cmd
}
