package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-life-engine/engine"
	"github.com/sheikhrachel/go-life-engine/utils"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation in the terminal",
		Long: `Run the simulation in the terminal until Ctrl+C, extinction, the
generation limit, or (with auto_pause_on_stagnation) a detected cycle.

Examples:
  life run                              # random soup on a 30x60 torus
  life run --pattern gosper-glider-gun --rows 40 --cols 80
  life run --pattern ./acorn.rle --topology finite --rate 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-generations") {
				config.MaxGenerations, _ = cmd.Flags().GetInt("max-generations")
			}
			if cmd.Flags().Changed("auto-pause") {
				config.AutoPauseOnStagnation, _ = cmd.Flags().GetBool("auto-pause")
			}
			quiet, _ := cmd.Flags().GetBool("quiet")

			logger := utils.NewLogger(config.LogLevel, cmd.ErrOrStderr())
			s := newSession(config, logger)
			if err := s.seed(cmd.Context(), patternDBPath(cmd, config)); err != nil {
				return err
			}

			loop := newRunLoop(s, cmd.OutOrStdout(), !quiet)
			driver := engine.NewDriver(s.scheduler, config.FrameInterval, loop.frame, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, gctx := errgroup.WithContext(ctx)

			// Handle Ctrl+C gracefully
			g.Go(func() error {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				defer signal.Stop(sigChan)

				select {
				case sig := <-sigChan:
					logger.Info("shutting down", "signal", sig.String())
					cancel()
				case <-gctx.Done():
				}
				return nil
			})

			g.Go(func() error {
				defer cancel()
				s.scheduler.Start()
				return driver.Run(gctx)
			})

			if err := g.Wait(); err != nil {
				return err
			}

			if loop.reason == "" {
				loop.reason = "interrupted"
			}
			stats := loop.stats
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped: %s\n", loop.reason)
			fmt.Fprintf(cmd.OutOrStdout(), "Final stats: %d generations in %.1f seconds\n",
				s.scheduler.Generation(), time.Since(stats.StartTime).Seconds())
			fmt.Fprintf(cmd.OutOrStdout(), "Average: %.1f gen/sec, %.1f avg population, %d peak\n",
				stats.GenerationsPerSecond, stats.AveragePopulation, stats.PeakPopulation)
			return loop.err
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Int("max-generations", 0, "Stop after this many generations (0 for no limit)")
	cmd.Flags().Bool("auto-pause", false, "Stop once the grid settles into a cycle")
	cmd.Flags().Bool("quiet", false, "Skip rendering; print only the final stats")

	return cmd
}
