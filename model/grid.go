package model

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life-engine/rules"
)

// Dimension bounds used when the caller does not configure any.
const (
	DefaultMinDimension = 3
	DefaultMaxDimension = 1000
)

// Grid represents the game board. Coordinates are (x, y) with x the column in
// [0, cols) and y the row in [0, rows).
type Grid struct {
	rows     int
	cols     int
	minDim   int
	maxDim   int
	topology Topology
	cells    [][]uint8

	pool   *CellBufferPool
	bus    *Bus
	logger *slog.Logger
}

// GridOption configures a Grid at construction time.
type GridOption func(*Grid)

// WithBus publishes grid notifications on b.
func WithBus(b *Bus) GridOption {
	return func(g *Grid) { g.bus = b }
}

// WithLogger routes input warnings to l.
func WithLogger(l *slog.Logger) GridOption {
	return func(g *Grid) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTopology sets the initial boundary topology. Invalid values are ignored.
func WithTopology(t Topology) GridOption {
	return func(g *Grid) {
		if t.Valid() {
			g.topology = t
		}
	}
}

// WithDimensionBounds sets the inclusive bounds that rows and cols are clamped to.
func WithDimensionBounds(minDim, maxDim int) GridOption {
	return func(g *Grid) {
		if minDim < 1 || maxDim < minDim {
			return
		}
		g.minDim, g.maxDim = minDim, maxDim
	}
}

// WithBufferPool recycles generation buffers through p.
func WithBufferPool(p *CellBufferPool) GridOption {
	return func(g *Grid) { g.pool = p }
}

// NewGrid creates an all-dead grid. Dimensions are clamped to the configured bounds.
func NewGrid(rows, cols int, opts ...GridOption) *Grid {
	g := &Grid{
		minDim:   DefaultMinDimension,
		maxDim:   DefaultMaxDimension,
		topology: Toroidal,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.rows = g.clampDim(rows)
	g.cols = g.clampDim(cols)
	g.cells = newCells(g.rows, g.cols)
	return g
}

// Rows returns the number of rows
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns
func (g *Grid) Cols() int {
	return g.cols
}

// CellCount returns rows * cols.
func (g *Grid) CellCount() int {
	return g.rows * g.cols
}

// Topology returns the active boundary topology.
func (g *Grid) Topology() Topology {
	return g.topology
}

// Cell returns the state at (x, y), or dead when out of bounds.
func (g *Grid) Cell(x, y int) uint8 {
	if !g.inBounds(x, y) {
		return rules.Dead
	}
	return g.cells[y][x]
}

// Cells exposes the live cell array for rendering. It is only valid until the
// next generation is computed and must not be modified.
func (g *Grid) Cells() [][]uint8 {
	return g.cells
}

// Snapshot returns a deep copy of the cell array.
func (g *Grid) Snapshot() [][]uint8 {
	out := newCells(g.rows, g.cols)
	for y := range g.cells {
		copy(out[y], g.cells[y])
	}
	return out
}

// ToggleCell flips the state at (x, y). Returns false when out of bounds.
func (g *Grid) ToggleCell(x, y int) bool {
	if !g.inBounds(x, y) {
		g.warn(errors.Wrapf(ErrOutOfBounds, "[ToggleCell] (%d, %d) outside %dx%d grid", x, y, g.cols, g.rows))
		return false
	}

	g.cells[y][x] ^= rules.Alive
	g.publishChanged()
	return true
}

// SetCell sets an explicit state at (x, y). Any state other than alive
// normalizes to dead. Returns false when out of bounds.
func (g *Grid) SetCell(x, y int, state uint8) bool {
	if !g.inBounds(x, y) {
		g.warn(errors.Wrapf(ErrOutOfBounds, "[SetCell] (%d, %d) outside %dx%d grid", x, y, g.cols, g.rows))
		return false
	}

	if state != rules.Alive {
		state = rules.Dead
	}
	g.cells[y][x] = state
	g.publishChanged()
	return true
}

// CountAliveNeighbors counts live cells among the 8 Moore neighbors of (x, y)
// under the current topology.
func (g *Grid) CountAliveNeighbors(x, y int) int {
	if !g.inBounds(x, y) {
		g.warn(errors.Wrapf(ErrOutOfBounds, "[CountAliveNeighbors] (%d, %d) outside %dx%d grid", x, y, g.cols, g.rows))
		return 0
	}
	return g.countNeighbors(x, y)
}

func (g *Grid) countNeighbors(x, y int) int {
	count := 0
	for dy := -1; dy <= 1; dy++ {
		ny, ok := g.topology.Resolve(y+dy, g.rows)
		if !ok {
			continue
		}
		row := g.cells[ny]
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue // Skip the cell itself
			}
			nx, ok := g.topology.Resolve(x+dx, g.cols)
			if !ok {
				continue
			}
			if row[nx] == rules.Alive {
				count++
			}
		}
	}
	return count
}

// ComputeNextGeneration applies the rules to every cell and swaps the result
// in as a single step. On error the grid is left untouched.
func (g *Grid) ComputeNextGeneration() error {
	if err := g.checkShape(); err != nil {
		return errors.Wrap(err, "[ComputeNextGeneration] refusing to advance")
	}

	next := g.pool.Get(g.rows, g.cols)
	for y := range g.rows {
		row := g.cells[y]
		for x := range g.cols {
			next[y][x] = rules.NextState(row[x], g.countNeighbors(x, y))
		}
	}

	prev := g.cells
	g.cells = next
	g.pool.Put(prev)
	return nil
}

// PlacePattern ORs the live cells of p onto the grid with its top-left corner
// at (originX, originY). The grid is unchanged and false is returned when the
// pattern is malformed or would not fit.
func (g *Grid) PlacePattern(p Pattern, originX, originY int) bool {
	if err := p.Validate(); err != nil {
		g.warn(errors.Wrap(err, "[PlacePattern] rejected"))
		return false
	}

	w, h := p.Width(), p.Height()
	if originX < 0 || originY < 0 || originX+w > g.cols || originY+h > g.rows {
		g.warn(errors.Wrapf(ErrPatternOutOfBounds, "[PlacePattern] %dx%d pattern %q at (%d, %d) on %dx%d grid",
			w, h, p.Name, originX, originY, g.cols, g.rows))
		return false
	}

	for y, row := range p.Cells {
		for x, c := range row {
			if c == rules.Alive {
				g.cells[originY+y][originX+x] = rules.Alive
			}
		}
	}
	g.publishChanged()
	return true
}

// Resize clamps the requested dimensions and reinitializes an all-dead grid.
func (g *Grid) Resize(rows, cols int) {
	clampedRows, clampedCols := g.clampDim(rows), g.clampDim(cols)
	if clampedRows != rows || clampedCols != cols {
		g.logger.Debug("resize clamped",
			"requested_rows", rows, "requested_cols", cols,
			"rows", clampedRows, "cols", clampedCols)
	}

	g.rows, g.cols = clampedRows, clampedCols
	g.cells = newCells(g.rows, g.cols)

	g.bus.Publish(Event{Kind: EventResized, Rows: g.rows, Cols: g.cols})
	g.publishChanged()
}

// Reset kills every cell, keeping the dimensions.
func (g *Grid) Reset() {
	g.cells = newCells(g.rows, g.cols)
	g.publishChanged()
}

// SetBoundaryTopology switches the neighbor-resolution rule. Unknown values are
// rejected and reported as a warning.
func (g *Grid) SetBoundaryTopology(t Topology) bool {
	if !t.Valid() {
		g.warn(errors.Wrapf(ErrInvalidTopology, "[SetBoundaryTopology] value %d", t))
		return false
	}

	g.topology = t
	g.bus.Publish(Event{Kind: EventBoundaryChanged, Topology: t})
	return true
}

// CountAliveCells returns the total number of living cells
func (g *Grid) CountAliveCells() (count int) {
	for _, row := range g.cells {
		for _, c := range row {
			if c == rules.Alive {
				count++
			}
		}
	}
	return
}

// Randomize fills the grid so that each cell is alive with probability density.
func (g *Grid) Randomize(r *rand.Rand, density float64) {
	density = min(max(density, 0), 1)
	for y := range g.rows {
		for x := range g.cols {
			if r.Float64() < density {
				g.cells[y][x] = rules.Alive
			} else {
				g.cells[y][x] = rules.Dead
			}
		}
	}
	g.publishChanged()
}

// Hash returns an MD5 digest of the dimensions and cell states.
func (g *Grid) Hash() string {
	h := md5.New()
	var dims [16]byte
	binary.LittleEndian.PutUint64(dims[:8], uint64(g.rows))
	binary.LittleEndian.PutUint64(dims[8:], uint64(g.cols))
	h.Write(dims[:])
	for _, row := range g.cells {
		h.Write(row)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

func (g *Grid) clampDim(n int) int {
	return min(max(n, g.minDim), g.maxDim)
}

func (g *Grid) checkShape() error {
	if len(g.cells) != g.rows {
		return errors.Wrapf(ErrCorruptGrid, "[checkShape] %d rows, want %d", len(g.cells), g.rows)
	}
	for y, row := range g.cells {
		if len(row) != g.cols {
			return errors.Wrapf(ErrCorruptGrid, "[checkShape] row %d has %d cells, want %d", y, len(row), g.cols)
		}
	}
	return nil
}

func (g *Grid) warn(err error) {
	g.logger.Warn("grid input rejected", "error", err)
	g.bus.Publish(Event{Kind: EventWarning, Err: err})
}

func (g *Grid) publishChanged() {
	g.bus.Publish(Event{Kind: EventGridChanged, Rows: g.rows, Cols: g.cols})
}
