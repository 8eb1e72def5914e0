//go:build ebiten

package gui

import (
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life-engine/engine"
	"github.com/sheikhrachel/go-life-engine/model"
)

// Game adapts the scheduler to the ebiten.Game interface. ebiten calls Update
// once per frame, which is the host frame callback the scheduler expects.
type Game struct {
	scheduler *engine.Scheduler
	grid      *model.Grid
	logger    *slog.Logger

	img  *ebiten.Image
	buf  []byte
	w, h int

	onColor  color.Color
	offColor color.Color
	scale    int
	start    time.Time
	status   string
}

// New constructs a Game for the provided scheduler and grid.
func New(s *engine.Scheduler, grid *model.Grid, opts Options) *Game {
	if opts.Scale <= 0 {
		opts.Scale = 8
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Game{
		scheduler: s,
		grid:      grid,
		logger:    opts.Logger,
		onColor:   color.White,
		offColor:  color.Black,
		scale:     opts.Scale,
		start:     time.Now(),
	}
}

// Update handles input and advances the simulation.
func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ), inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if g.scheduler.Running() {
			g.scheduler.Pause()
		} else {
			g.scheduler.Start()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		manualStep(g.scheduler, g.logger)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.scheduler.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		next := nextTopology(g.grid.Topology())
		g.grid.SetBoundaryTopology(next)
		g.logger.Debug("topology switched", "topology", next)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.scheduler.UpdateRate(g.scheduler.TargetRate() + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.scheduler.UpdateRate(g.scheduler.TargetRate() - 1)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		cx, cy := ebiten.CursorPosition()
		x, y := cellAt(cx, cy, g.scale)
		g.grid.ToggleCell(x, y)
	}

	res := g.scheduler.OnTick(time.Since(g.start))
	if res.AnalyticsDue || !g.scheduler.Running() {
		g.status = fmt.Sprintf("gen %d  alive %d  %d gen/s  %s",
			g.scheduler.Generation(), g.grid.CountAliveCells(), g.scheduler.TargetRate(), g.grid.Topology())
	}
	return nil
}

// Draw renders the current grid state.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.img == nil || g.w != g.grid.Cols() || g.h != g.grid.Rows() {
		g.w, g.h = g.grid.Cols(), g.grid.Rows()
		g.img = ebiten.NewImage(g.w, g.h)
		g.buf = make([]byte, 4*g.w*g.h)
	}

	fillCellsRGBA(g.buf, g.grid.Cells(), g.onColor, g.offColor)
	g.img.WritePixels(g.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.img, op)
	ebitenutil.DebugPrint(screen, g.status)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.grid.Cols() * g.scale, g.grid.Rows() * g.scale
}

// Run opens the window and blocks until it is closed.
func Run(s *engine.Scheduler, grid *model.Grid, opts Options) error {
	game := New(s, grid, opts)

	title := opts.Title
	if title == "" {
		title = "go-life-engine"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(grid.Cols()*game.scale, grid.Rows()*game.scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
