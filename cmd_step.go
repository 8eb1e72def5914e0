package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sheikhrachel/go-life-engine/model"
	"github.com/sheikhrachel/go-life-engine/utils"
)

type stepResult struct {
	Generation int    `json:"generation"`
	Alive      int    `json:"alive"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	Topology   string `json:"topology"`
	Hash       string `json:"hash"`
}

func newStepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step [generations]",
		Short: "Advance a seeded grid a fixed number of generations and print it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			generations := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 0 {
					return errors.Errorf("[step] generations must be a non-negative integer, got %q", args[0])
				}
				generations = n
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := utils.NewLogger(config.LogLevel, cmd.ErrOrStderr())
			s := newSession(config, logger)
			if err := s.seed(cmd.Context(), patternDBPath(cmd, config)); err != nil {
				return err
			}

			for range generations {
				if err := s.scheduler.Step(); err != nil {
					return err
				}
			}

			result := stepResult{
				Generation: s.scheduler.Generation(),
				Alive:      s.grid.CountAliveCells(),
				Rows:       s.grid.Rows(),
				Cols:       s.grid.Cols(),
				Topology:   s.grid.Topology().String(),
				Hash:       s.grid.Hash(),
			}
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			if err := model.NewTerminalRenderer(cmd.OutOrStdout()).Display(s.grid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Gen: %d | Living: %d | Grid: %dx%d %s\n",
				result.Generation, result.Alive, result.Cols, result.Rows, result.Topology)
			return nil
		},
	}

	addSimulationFlags(cmd)
	return cmd
}
