// Package topology answers which cell lies across each slot of a cell for
// the supported map layouts.
package topology

import (
	"errors"
	"fmt"
	"strings"

	"wang-painter/internal/grid"
	"wang-painter/internal/wang"
)

// ErrUnknownOrientation is returned by New for an unsupported layout.
var ErrUnknownOrientation = errors.New("unknown map orientation")

// Oracle maps a cell and a slot to the neighboring cell that shares that
// edge or corner. Implementations are pure: the result depends only on
// the arguments and the oracle's own parameters.
type Oracle interface {
	// Neighbor returns the cell across slot of p. It panics when slot is
	// outside 0-7.
	Neighbor(p grid.Point, slot int) grid.Point
	// Neighbors returns all eight neighbors of p indexed by slot.
	Neighbors(p grid.Point) [wang.NumSlots]grid.Point
}

// Orientation names a map layout.
type Orientation string

const (
	Orthogonal Orientation = "orthogonal"
	Isometric  Orientation = "isometric"
	Hexagonal  Orientation = "hexagonal"
	Staggered  Orientation = "staggered"
)

// StaggerAxis is the axis along which every other row or column is
// shifted by half a tile.
type StaggerAxis string

const (
	StaggerX StaggerAxis = "x"
	StaggerY StaggerAxis = "y"
)

// StaggerIndex says whether the odd or the even rows (or columns) are
// shifted.
type StaggerIndex string

const (
	StaggerOdd  StaggerIndex = "odd"
	StaggerEven StaggerIndex = "even"
)

// Descriptor is the layout part of a map header.
type Descriptor struct {
	Orientation  Orientation  `json:"orientation"`
	StaggerAxis  StaggerAxis  `json:"staggeraxis,omitempty"`
	StaggerIndex StaggerIndex `json:"staggerindex,omitempty"`
}

// New selects the oracle for d. An empty orientation means orthogonal.
// Isometric and hexagonal maps use the orthogonal neighbor table; only
// staggered maps need the projected one.
func New(d Descriptor) (Oracle, error) {
	switch Orientation(strings.ToLower(string(d.Orientation))) {
	case "", Orthogonal, Isometric, Hexagonal:
		return Rect{}, nil
	case Staggered:
		s := Stagger{Axis: StaggerY, Index: StaggerOdd}
		switch StaggerAxis(strings.ToLower(string(d.StaggerAxis))) {
		case "", StaggerY:
		case StaggerX:
			s.Axis = StaggerX
		default:
			return nil, fmt.Errorf("stagger axis %q: %w", d.StaggerAxis, ErrUnknownOrientation)
		}
		switch StaggerIndex(strings.ToLower(string(d.StaggerIndex))) {
		case "", StaggerOdd:
		case StaggerEven:
			s.Index = StaggerEven
		default:
			return nil, fmt.Errorf("stagger index %q: %w", d.StaggerIndex, ErrUnknownOrientation)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%q: %w", d.Orientation, ErrUnknownOrientation)
	}
}

func checkSlot(slot int) {
	if slot < 0 || slot >= wang.NumSlots {
		panic(fmt.Sprintf("topology: slot index %d out of range", slot))
	}
}

// compass holds the orthogonal neighbor offsets by slot.
var compass = [wang.NumSlots]grid.Point{
	{X: 0, Y: -1},
	{X: 1, Y: -1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
}

// Rect is the oracle for maps where every cell is a plain grid square.
type Rect struct{}

func (Rect) Neighbor(p grid.Point, slot int) grid.Point {
	checkSlot(slot)
	return p.Add(compass[slot])
}

func (Rect) Neighbors(p grid.Point) [wang.NumSlots]grid.Point {
	var out [wang.NumSlots]grid.Point
	for i, d := range compass {
		out[i] = p.Add(d)
	}
	return out
}
