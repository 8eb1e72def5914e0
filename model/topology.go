package model

import (
	"strings"

	"github.com/pkg/errors"
)

// Topology decides how neighbor coordinates outside the grid are resolved.
type Topology uint8

const (
	// Toroidal wraps every edge onto the opposite one.
	Toroidal Topology = iota + 1
	// Finite treats the edges as hard boundaries.
	Finite
)

// String returns the config/CLI name of the topology.
func (t Topology) String() string {
	switch t {
	case Toroidal:
		return "toroidal"
	case Finite:
		return "finite"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the recognized topologies.
func (t Topology) Valid() bool {
	return t == Toroidal || t == Finite
}

// Resolve maps a coordinate along an axis of size dim to an addressable index.
// The boolean is false when the coordinate falls off a Finite edge.
func (t Topology) Resolve(coord, dim int) (int, bool) {
	if coord >= 0 && coord < dim {
		return coord, true
	}
	if t == Toroidal && dim > 0 {
		return ((coord % dim) + dim) % dim, true
	}
	return 0, false
}

// ParseTopology maps a name ("toroidal"/"torus"/"wrap", "finite"/"bounded") to a Topology.
func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toroidal", "torus", "wrap":
		return Toroidal, nil
	case "finite", "bounded":
		return Finite, nil
	}
	return 0, errors.Wrapf(ErrInvalidTopology, "[ParseTopology] unrecognized value %q", s)
}
