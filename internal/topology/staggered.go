package topology

import (
	"wang-painter/internal/grid"
	"wang-painter/internal/wang"
)

// Stagger is the oracle for staggered maps, where every other row (axis
// y) or column (axis x) is shifted by half a tile. Each cell's edges face
// the four diagonal grid neighbors; its corners face cells two rows or
// columns away along the staggered axis and one step away on the other.
type Stagger struct {
	Axis  StaggerAxis
	Index StaggerIndex
}

// Shifted reports whether row or column c is one of the shifted ones.
func (s Stagger) Shifted(c int) bool {
	even := 0
	if s.Index == StaggerEven {
		even = 1
	}
	return (c&1)^even == 1
}

// TopLeft returns the cell touching the top left edge of p.
func (s Stagger) TopLeft(p grid.Point) grid.Point {
	if s.Axis == StaggerX {
		if s.Shifted(p.X) {
			return grid.Pt(p.X-1, p.Y)
		}
		return grid.Pt(p.X-1, p.Y-1)
	}
	if s.Shifted(p.Y) {
		return grid.Pt(p.X, p.Y-1)
	}
	return grid.Pt(p.X-1, p.Y-1)
}

// TopRight returns the cell touching the top right edge of p.
func (s Stagger) TopRight(p grid.Point) grid.Point {
	if s.Axis == StaggerX {
		if s.Shifted(p.X) {
			return grid.Pt(p.X+1, p.Y)
		}
		return grid.Pt(p.X+1, p.Y-1)
	}
	if s.Shifted(p.Y) {
		return grid.Pt(p.X+1, p.Y-1)
	}
	return grid.Pt(p.X, p.Y-1)
}

// BottomLeft returns the cell touching the bottom left edge of p.
func (s Stagger) BottomLeft(p grid.Point) grid.Point {
	if s.Axis == StaggerX {
		if s.Shifted(p.X) {
			return grid.Pt(p.X-1, p.Y+1)
		}
		return grid.Pt(p.X-1, p.Y)
	}
	if s.Shifted(p.Y) {
		return grid.Pt(p.X, p.Y+1)
	}
	return grid.Pt(p.X-1, p.Y+1)
}

// BottomRight returns the cell touching the bottom right edge of p.
func (s Stagger) BottomRight(p grid.Point) grid.Point {
	if s.Axis == StaggerX {
		if s.Shifted(p.X) {
			return grid.Pt(p.X+1, p.Y+1)
		}
		return grid.Pt(p.X+1, p.Y)
	}
	if s.Shifted(p.Y) {
		return grid.Pt(p.X+1, p.Y+1)
	}
	return grid.Pt(p.X, p.Y+1)
}

// corner offsets by corner index (top right, bottom right, bottom left,
// top left) for each stagger axis.
var (
	cornersX = [4]grid.Point{{X: 2, Y: 0}, {X: 0, Y: 1}, {X: -2, Y: 0}, {X: 0, Y: -1}}
	cornersY = [4]grid.Point{{X: 1, Y: 0}, {X: 0, Y: 2}, {X: -1, Y: 0}, {X: 0, Y: -2}}
)

func (s Stagger) Neighbor(p grid.Point, slot int) grid.Point {
	checkSlot(slot)
	switch slot {
	case wang.Top:
		return s.TopRight(p)
	case wang.Right:
		return s.BottomRight(p)
	case wang.Bottom:
		return s.BottomLeft(p)
	case wang.Left:
		return s.TopLeft(p)
	}
	if s.Axis == StaggerX {
		return p.Add(cornersX[slot/2])
	}
	return p.Add(cornersY[slot/2])
}

func (s Stagger) Neighbors(p grid.Point) [wang.NumSlots]grid.Point {
	var out [wang.NumSlots]grid.Point
	for i := range out {
		out[i] = s.Neighbor(p, i)
	}
	return out
}
