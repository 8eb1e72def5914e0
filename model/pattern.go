package model

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life-engine/rules"
)

// Pattern is a rectangular block of cell states that can be stamped onto a grid.
// Cells is indexed [row][column].
type Pattern struct {
	Name  string
	Cells [][]uint8
}

// Width returns the number of columns in the pattern.
func (p Pattern) Width() int {
	if len(p.Cells) == 0 {
		return 0
	}
	return len(p.Cells[0])
}

// Height returns the number of rows in the pattern.
func (p Pattern) Height() int {
	return len(p.Cells)
}

// Validate checks that the pattern is non-empty and rectangular.
func (p Pattern) Validate() error {
	if len(p.Cells) == 0 || len(p.Cells[0]) == 0 {
		return errors.Wrapf(ErrMalformedPattern, "[Pattern.Validate] pattern %q is empty", p.Name)
	}
	width := len(p.Cells[0])
	for y, row := range p.Cells {
		if len(row) != width {
			return errors.Wrapf(ErrMalformedPattern,
				"[Pattern.Validate] pattern %q row %d has %d cells, want %d", p.Name, y, len(row), width)
		}
	}
	return nil
}

// AliveCount returns the number of live cells in the pattern.
func (p Pattern) AliveCount() (count int) {
	for _, row := range p.Cells {
		for _, c := range row {
			if c == rules.Alive {
				count++
			}
		}
	}
	return
}

// PatternFromStrings builds a pattern from text rows where 'O', '*', '#' and '1'
// are alive and every other rune is dead. Short rows are padded with dead cells.
func PatternFromStrings(name string, lines ...string) (Pattern, error) {
	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}

	cells := make([][]uint8, len(lines))
	for y, line := range lines {
		cells[y] = make([]uint8, width)
		for x, r := range []rune(line) {
			switch r {
			case 'O', '*', '#', '1':
				cells[y][x] = rules.Alive
			}
		}
	}

	p := Pattern{Name: name, Cells: cells}
	if err := p.Validate(); err != nil {
		return Pattern{}, errors.Wrapf(err, "[PatternFromStrings] failed to build pattern: %+v", name)
	}
	return p, nil
}

// String renders the pattern with 'O' for live and '.' for dead cells.
func (p Pattern) String() string {
	var sb strings.Builder
	for y, row := range p.Cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range row {
			if c == rules.Alive {
				sb.WriteByte('O')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}
