package model

import "github.com/pkg/errors"

// Input errors. All of them are recoverable: the offending call is a no-op.
var (
	ErrOutOfBounds        = errors.New("coordinates out of bounds")
	ErrInvalidTopology    = errors.New("invalid boundary topology")
	ErrMalformedPattern   = errors.New("malformed pattern")
	ErrPatternOutOfBounds = errors.New("pattern exceeds grid bounds")
)

// ErrCorruptGrid reports a cell array that no longer matches the grid dimensions.
var ErrCorruptGrid = errors.New("cell array does not match grid dimensions")
