package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sheikhrachel/go-life-engine/engine"
	"github.com/sheikhrachel/go-life-engine/model"
	"github.com/sheikhrachel/go-life-engine/patterns"
	"github.com/sheikhrachel/go-life-engine/store"
	"github.com/sheikhrachel/go-life-engine/utils"
)

const defaultConfigFile = "config.json"

// addSimulationFlags registers the flags shared by run, step and gui.
func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("rows", 0, "Grid rows")
	cmd.Flags().Int("cols", 0, "Grid columns")
	cmd.Flags().Int("rate", 0, "Target generations per second")
	cmd.Flags().String("topology", "", "Boundary topology: toroidal or finite")
	cmd.Flags().String("device", "", "Device class: desktop or constrained")
	cmd.Flags().String("pattern", "", "Builtin name, pattern file (.rle/.cells) or library name; empty seeds randomly")
	cmd.Flags().Int64("seed", 0, "Random seed")
	cmd.Flags().Float64("density", 0, "Random fill density in [0, 1]")
}

// loadConfig reads the config file (falling back to defaults like the old
// config.json behaviour) and applies any flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (utils.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	config := utils.DefaultConfig()
	switch {
	case path != "":
		var err error
		if config, err = utils.LoadConfig(path); err != nil {
			return config, err
		}
	default:
		if _, err := os.Stat(defaultConfigFile); err == nil {
			var err error
			if config, err = utils.LoadConfig(defaultConfigFile); err != nil {
				return config, err
			}
		}
	}

	if err := applyFlagOverrides(cmd, &config); err != nil {
		return config, err
	}
	if err := config.Validate(); err != nil {
		return config, errors.Wrap(err, "[loadConfig] invalid flags")
	}
	return config, nil
}

func applyFlagOverrides(cmd *cobra.Command, config *utils.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("rows") {
		if config.Rows, err = flags.GetInt("rows"); err != nil {
			return err
		}
	}
	if flags.Changed("cols") {
		if config.Cols, err = flags.GetInt("cols"); err != nil {
			return err
		}
	}
	if flags.Changed("rate") {
		if config.TargetRate, err = flags.GetInt("rate"); err != nil {
			return err
		}
	}
	if flags.Changed("topology") {
		if config.Topology, err = flags.GetString("topology"); err != nil {
			return err
		}
	}
	if flags.Changed("device") {
		if config.DeviceClass, err = flags.GetString("device"); err != nil {
			return err
		}
	}
	if flags.Changed("pattern") {
		if config.Pattern, err = flags.GetString("pattern"); err != nil {
			return err
		}
	}
	if flags.Changed("seed") {
		if config.Seed, err = flags.GetInt64("seed"); err != nil {
			return err
		}
	}
	if flags.Changed("density") {
		if config.RandomDensity, err = flags.GetFloat64("density"); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		if config.LogLevel, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}
	if flags.Changed("db") {
		if config.PatternDB, err = flags.GetString("db"); err != nil {
			return err
		}
	}
	return nil
}

// patternDBPath returns the library location: --db, then config, then the
// user config directory.
func patternDBPath(cmd *cobra.Command, config utils.Config) string {
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		return path
	}
	if config.PatternDB != "" {
		return config.PatternDB
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".life", "patterns.db")
	}
	return filepath.Join(dir, "go-life-engine", "patterns.db")
}

// session bundles the engine objects wired from a Config.
type session struct {
	config    utils.Config
	logger    *slog.Logger
	bus       *model.Bus
	grid      *model.Grid
	scheduler *engine.Scheduler
}

func newSession(config utils.Config, logger *slog.Logger) *session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	bus := model.NewBus()
	opts := append(config.GridOptions(),
		model.WithBus(bus),
		model.WithLogger(logger),
		model.WithBufferPool(model.NewCellBufferPool()),
	)
	grid := model.NewGrid(config.Rows, config.Cols, opts...)
	scheduler := engine.NewScheduler(grid, config.SchedulerConfig(), bus, logger)

	bus.Subscribe(model.EventStateChanged, func(ev model.Event) {
		logger.Info("simulation state changed", "running", ev.Running, "generation", ev.Generation)
	})
	bus.Subscribe(model.EventGenerationAdvanced, func(ev model.Event) {
		logger.Log(context.Background(), utils.LevelTrace, "generation advanced",
			"generation", ev.Generation, "alive", ev.AliveCells)
	})

	return &session{
		config:    config,
		logger:    logger,
		bus:       bus,
		grid:      grid,
		scheduler: scheduler,
	}
}

// seed fills the grid from the configured pattern, or randomly when none is set.
func (s *session) seed(ctx context.Context, dbPath string) error {
	if s.config.Pattern == "" {
		rng := rand.New(rand.NewPCG(uint64(s.config.Seed), 0))
		s.grid.Randomize(rng, s.config.RandomDensity)
		s.logger.Debug("grid randomized", "seed", s.config.Seed, "density", s.config.RandomDensity,
			"alive", s.grid.CountAliveCells())
		return nil
	}

	p, err := resolvePattern(ctx, s.config.Pattern, dbPath)
	if err != nil {
		return err
	}
	x, y := patterns.Centered(p, s.grid.Rows(), s.grid.Cols())
	if !s.grid.PlacePattern(p, x, y) {
		return errors.Wrapf(model.ErrPatternOutOfBounds, "[seed] %dx%d pattern %q does not fit %dx%d grid",
			p.Width(), p.Height(), p.Name, s.grid.Cols(), s.grid.Rows())
	}
	s.logger.Debug("pattern placed", "pattern", p.Name, "x", x, "y", y)
	return nil
}

// resolvePattern looks name up as a builtin, then as a file, then in the
// pattern library at dbPath.
func resolvePattern(ctx context.Context, name, dbPath string) (model.Pattern, error) {
	if p, ok := patterns.Lookup(name); ok {
		return p, nil
	}

	if info, err := os.Stat(name); err == nil && info.Mode().IsRegular() {
		return readPatternFile(name)
	}

	if _, err := os.Stat(dbPath); err != nil {
		return model.Pattern{}, errors.Wrapf(store.ErrPatternNotFound, "[resolvePattern] %q", name)
	}
	lib, err := store.OpenPatternLibrary(ctx, dbPath)
	if err != nil {
		return model.Pattern{}, err
	}
	defer lib.Close()
	return lib.Get(ctx, name)
}

// readPatternFile parses a .rle file, or the plaintext format for anything else.
// Unnamed patterns take the file's base name.
func readPatternFile(path string) (model.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Pattern{}, errors.Wrapf(err, "[readPatternFile] failed to open file: %+v", path)
	}
	defer f.Close()

	var p model.Pattern
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".rle" {
		p, err = patterns.ParseRLE(f)
	} else {
		p, err = patterns.ParsePlaintext(f)
	}
	if err != nil {
		return model.Pattern{}, errors.Wrapf(err, "[readPatternFile] failed to parse file: %+v", path)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// runLoop is the terminal frame callback: it renders on redraw frames and
// updates analytics on analytics frames.
type runLoop struct {
	config    utils.Config
	grid      *model.Grid
	scheduler *engine.Scheduler
	renderer  *model.TerminalRenderer
	out       io.Writer
	render    bool

	stats  *utils.Stats
	cycles *utils.CycleDetector
	now    func() time.Time

	reason string
	err    error
}

func newRunLoop(s *session, out io.Writer, render bool) *runLoop {
	return &runLoop{
		config:    s.config,
		grid:      s.grid,
		scheduler: s.scheduler,
		renderer:  model.NewTerminalRenderer(out),
		out:       out,
		render:    render,
		stats:     utils.NewStats(time.Now()),
		cycles:    utils.NewCycleDetector(s.config.StagnationThreshold * 2),
		now:       time.Now,
	}
}

// frame handles one TickResult. Returning false ends the run.
func (l *runLoop) frame(res engine.TickResult) bool {
	if res.Err != nil {
		l.err = res.Err
		l.reason = "simulation error"
		return false
	}

	generation := l.scheduler.Generation()
	if res.AnalyticsDue {
		alive := l.grid.CountAliveCells()
		l.stats.Update(generation, alive, l.grid.CellCount(), l.now())

		if alive == 0 {
			l.scheduler.Pause()
			l.reason = "extinction"
			return false
		}
		l.cycles.Observe(l.grid.Hash())
		if l.config.AutoPauseOnStagnation && l.cycles.Streak() >= l.config.StagnationThreshold {
			l.scheduler.Pause()
			l.reason = "stagnation detected"
			return false
		}
	}

	if res.RedrawDue && l.render {
		if err := l.draw(); err != nil {
			l.err = err
			l.reason = "render error"
			return false
		}
	}

	if l.config.MaxGenerations > 0 && generation >= l.config.MaxGenerations {
		l.scheduler.Pause()
		l.reason = fmt.Sprintf("reached maximum generations limit (%d)", l.config.MaxGenerations)
		return false
	}
	return true
}

func (l *runLoop) draw() error {
	if err := l.renderer.Clear(); err != nil {
		return err
	}
	displayGameStatus(l.out, l.scheduler, l.grid, l.stats, l.cycles)
	return l.renderer.Display(l.grid)
}

// displayGameStatus shows the current game status
func displayGameStatus(w io.Writer, s *engine.Scheduler, g *model.Grid, stats *utils.Stats, cycles *utils.CycleDetector) {
	status := "Active"
	if cycles.Streak() > 0 {
		status = fmt.Sprintf("Repeating (%d)", cycles.Streak())
	}
	fmt.Fprintf(w, "Gen: %d | Living: %d | Density: %.1f%% | Topology: %s | Status: %s\n",
		s.Generation(), stats.Population, stats.Density, g.Topology(), status)
	fmt.Fprintf(w, "Performance: %.1f gen/sec (target %d) | Avg Pop: %.1f | Peak: %d\n",
		stats.GenerationsPerSecond, s.TargetRate(), stats.AveragePopulation, stats.PeakPopulation)
	fmt.Fprintln(w)
}
