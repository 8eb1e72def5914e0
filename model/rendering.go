package model

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life-engine/rules"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "

	ansiClear = "\033[H\033[2J"
)

// CellReader is the read-only view a renderer needs.
type CellReader interface {
	Rows() int
	Cols() int
	Cell(x, y int) uint8
}

// TerminalRenderer implements basic terminal rendering
type TerminalRenderer struct {
	out io.Writer
}

// NewTerminalRenderer renders to w.
func NewTerminalRenderer(w io.Writer) *TerminalRenderer {
	return &TerminalRenderer{out: w}
}

// Display renders the grid to the terminal in a single write
func (r *TerminalRenderer) Display(g CellReader) error {
	var sb strings.Builder
	sb.Grow(g.Rows() * (g.Cols()*len(gridPosBlock) + 1))
	for y := range g.Rows() {
		for x := range g.Cols() {
			if g.Cell(x, y) == rules.Alive {
				sb.WriteString(gridPosBlock)
			} else {
				sb.WriteString(gridPosEmpty)
			}
		}
		sb.WriteByte('\n')
	}

	if _, err := io.WriteString(r.out, sb.String()); err != nil {
		return errors.Wrap(err, "[Display] failed to write grid")
	}
	return nil
}

// Clear clears the terminal screen
func (r *TerminalRenderer) Clear() error {
	if _, err := io.WriteString(r.out, ansiClear); err != nil {
		return errors.Wrap(err, "[Clear] failed to clear terminal")
	}
	return nil
}
