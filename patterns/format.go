package patterns

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life-engine/model"
	"github.com/sheikhrachel/go-life-engine/rules"
)

// ParsePlaintext reads the plaintext format: '!' comment lines (a "!Name:"
// comment names the pattern), 'O' for live cells and '.' for dead ones.
func ParsePlaintext(r io.Reader) (model.Pattern, error) {
	var (
		name  string
		lines []string
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.HasPrefix(line, "!") {
			if rest, ok := strings.CutPrefix(line, "!Name:"); ok {
				name = strings.TrimSpace(rest)
			}
			continue
		}
		for _, c := range line {
			if c != 'O' && c != '.' {
				return model.Pattern{}, errors.Wrapf(model.ErrMalformedPattern,
					"[ParsePlaintext] unexpected character %q in line %d", c, len(lines)+1)
			}
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return model.Pattern{}, errors.Wrap(err, "[ParsePlaintext] failed to read pattern")
	}

	// Drop trailing blank rows
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return model.PatternFromStrings(name, lines...)
}

// FormatPlaintext writes p in the plaintext format.
func FormatPlaintext(p model.Pattern) string {
	var sb strings.Builder
	if p.Name != "" {
		fmt.Fprintf(&sb, "!Name: %s\n", p.Name)
	}
	sb.WriteString(p.String())
	sb.WriteByte('\n')
	return sb.String()
}

// ParseRLE reads the run-length encoded format. Only the B3/S23 rule is accepted.
func ParseRLE(r io.Reader) (model.Pattern, error) {
	var (
		name          string
		width, height int
		header        bool
		body          strings.Builder
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			if rest, ok := strings.CutPrefix(line, "#N"); ok {
				name = strings.TrimSpace(rest)
			}
		case !header:
			var err error
			if width, height, err = parseRLEHeader(line); err != nil {
				return model.Pattern{}, err
			}
			header = true
		default:
			body.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return model.Pattern{}, errors.Wrap(err, "[ParseRLE] failed to read pattern")
	}
	if !header {
		return model.Pattern{}, errors.Wrap(model.ErrMalformedPattern, "[ParseRLE] missing header line")
	}

	cells := make([][]uint8, height)
	for i := range cells {
		cells[i] = make([]uint8, width)
	}

	// No run can usefully exceed the larger side
	maxRun := max(width, height)
	x, y, count := 0, 0, 0
	for _, c := range body.String() {
		switch {
		case c >= '0' && c <= '9':
			count = count*10 + int(c-'0')
			if count > maxRun {
				return model.Pattern{}, errors.Wrapf(model.ErrMalformedPattern,
					"[ParseRLE] run count exceeds %dx%d bounds", width, height)
			}
			continue
		case c == '!':
			return model.Pattern{Name: name, Cells: cells}, nil
		}

		n := max(count, 1)
		count = 0
		switch c {
		case 'b', '.':
			x += n
		case 'o':
			if x < 0 || y < 0 || y >= height || x+n > width {
				return model.Pattern{}, errors.Wrapf(model.ErrMalformedPattern,
					"[ParseRLE] run of %d at (%d, %d) exceeds %dx%d bounds", n, x, y, width, height)
			}
			for i := range n {
				cells[y][x+i] = rules.Alive
			}
			x += n
		case '$':
			y += n
			x = 0
		default:
			return model.Pattern{}, errors.Wrapf(model.ErrMalformedPattern, "[ParseRLE] unexpected tag %q", c)
		}
	}
	return model.Pattern{}, errors.Wrap(model.ErrMalformedPattern, "[ParseRLE] missing '!' terminator")
}

func parseRLEHeader(line string) (width, height int, err error) {
	for _, field := range strings.Split(line, ",") {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return 0, 0, errors.Wrapf(model.ErrMalformedPattern, "[parseRLEHeader] bad field %q", field)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch key {
		case "x":
			width, err = strconv.Atoi(value)
		case "y":
			height, err = strconv.Atoi(value)
		case "rule":
			if !isConwayRule(value) {
				return 0, 0, errors.Wrapf(model.ErrMalformedPattern, "[parseRLEHeader] unsupported rule %q", value)
			}
		}
		if err != nil {
			return 0, 0, errors.Wrapf(model.ErrMalformedPattern, "[parseRLEHeader] bad %s value %q", key, value)
		}
	}

	if width <= 0 || height <= 0 || width > model.DefaultMaxDimension || height > model.DefaultMaxDimension {
		return 0, 0, errors.Wrapf(model.ErrMalformedPattern, "[parseRLEHeader] bad dimensions %dx%d", width, height)
	}
	return width, height, nil
}

func isConwayRule(rule string) bool {
	switch strings.ToUpper(strings.ReplaceAll(rule, " ", "")) {
	case "B3/S23", "23/3", "S23/B3":
		return true
	}
	return false
}

// FormatRLE writes p in the run-length encoded format, 70 columns per line.
func FormatRLE(p model.Pattern) string {
	var sb strings.Builder
	if p.Name != "" {
		fmt.Fprintf(&sb, "#N %s\n", p.Name)
	}
	fmt.Fprintf(&sb, "x = %d, y = %d, rule = B3/S23\n", p.Width(), p.Height())

	var (
		tokens  []string
		pending int // blank rows waiting for a '$'
	)
	emit := func(n int, tag byte) {
		if n == 1 {
			tokens = append(tokens, string(tag))
		} else {
			tokens = append(tokens, strconv.Itoa(n)+string(tag))
		}
	}

	for y, row := range p.Cells {
		// Trailing dead cells are implied
		end := len(row)
		for end > 0 && row[end-1] != rules.Alive {
			end--
		}
		if end == 0 {
			if y > 0 {
				pending++
			}
			continue
		}
		if y > 0 {
			emit(pending+1, '$')
		}
		pending = 0

		for x := 0; x < end; {
			run := 1
			for x+run < end && (row[x+run] == rules.Alive) == (row[x] == rules.Alive) {
				run++
			}
			if row[x] == rules.Alive {
				emit(run, 'o')
			} else {
				emit(run, 'b')
			}
			x += run
		}
	}
	tokens = append(tokens, "!")

	lineLen := 0
	for _, tok := range tokens {
		if lineLen+len(tok) > 70 {
			sb.WriteByte('\n')
			lineLen = 0
		}
		sb.WriteString(tok)
		lineLen += len(tok)
	}
	sb.WriteByte('\n')
	return sb.String()
}
