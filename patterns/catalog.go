// Package patterns holds the built-in pattern catalog and the readers and
// writers for the plaintext (.cells) and run-length encoded (.rle) formats.
package patterns

import (
	"sort"
	"strings"

	"github.com/sheikhrachel/go-life-engine/model"
)

var builtins = map[string][]string{
	"block":       {"OO", "OO"},
	"beehive":     {".OO.", "O..O", ".OO."},
	"blinker":     {"OOO"},
	"toad":        {".OOO", "OOO."},
	"beacon":      {"OO..", "OO..", "..OO", "..OO"},
	"glider":      {".O.", "..O", "OOO"},
	"lwss":        {".O..O", "O....", "O...O", "OOOO."},
	"r-pentomino": {".OO", "OO.", ".O."},
	"diehard":     {"......O.", "OO......", ".O...OOO"},
	"acorn":       {".O.....", "...O...", "OO..OOO"},
	"pulsar": {
		"..OOO...OOO..",
		".............",
		"O....O.O....O",
		"O....O.O....O",
		"O....O.O....O",
		"..OOO...OOO..",
		".............",
		"..OOO...OOO..",
		"O....O.O....O",
		"O....O.O....O",
		"O....O.O....O",
		".............",
		"..OOO...OOO..",
	},
	"gosper-glider-gun": {
		"........................O...........",
		"......................O.O...........",
		"............OO......OO............OO",
		"...........O...O....OO............OO",
		"OO........O.....O...OO..............",
		"OO........O...O.OO....O.O...........",
		"..........O.....O.......O...........",
		"...........O...O....................",
		"............OO......................",
	},
}

// Names returns the built-in pattern names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the built-in pattern with the given name (case-insensitive).
func Lookup(name string) (model.Pattern, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	rows, ok := builtins[name]
	if !ok {
		return model.Pattern{}, false
	}
	p, err := model.PatternFromStrings(name, rows...)
	if err != nil {
		return model.Pattern{}, false
	}
	return p, true
}

// Centered returns the origin that places p in the middle of a rows x cols grid.
// The origin may be negative when the pattern is larger than the grid.
func Centered(p model.Pattern, rows, cols int) (x, y int) {
	return (cols - p.Width()) / 2, (rows - p.Height()) / 2
}
