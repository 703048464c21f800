package grid

import (
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// Region is a set of cells. The zero value is an empty region ready to use.
// Copies of a Region share storage; use Clone for an independent copy.
type Region struct {
	cells mapset.Set[Point]
	init  bool
}

// NewRegion returns a region holding the given points.
func NewRegion(points ...Point) Region {
	r := Region{cells: mapset.New[Point](), init: true}
	for _, p := range points {
		r.cells.Put(p)
	}
	return r
}

// RectRegion returns the region covering every cell of rect.
func RectRegion(rect Rect) Region {
	return NewRegion(rect.Points()...)
}

func (r *Region) ensure() {
	if !r.init {
		r.cells = mapset.New[Point]()
		r.init = true
	}
}

// Add inserts p.
func (r *Region) Add(p Point) {
	r.ensure()
	r.cells.Put(p)
}

// AddRect inserts every cell of rect.
func (r *Region) AddRect(rect Rect) {
	r.ensure()
	for _, p := range rect.Points() {
		r.cells.Put(p)
	}
}

// AddRegion inserts every cell of o.
func (r *Region) AddRegion(o Region) {
	r.ensure()
	o.cells.Each(func(p Point) {
		r.cells.Put(p)
	})
}

// Remove deletes p if present.
func (r *Region) Remove(p Point) {
	if r.init {
		r.cells.Remove(p)
	}
}

// Contains reports whether p is part of the region.
func (r Region) Contains(p Point) bool {
	return r.init && r.cells.Has(p)
}

// Len returns the number of cells.
func (r Region) Len() int {
	if !r.init {
		return 0
	}
	return r.cells.Size()
}

// IsEmpty reports whether the region has no cells.
func (r Region) IsEmpty() bool {
	return r.Len() == 0
}

// Points returns the cells in row-major order (Y first, then X). This is
// the order in which the filler visits a region.
func (r Region) Points() []Point {
	if !r.init {
		return nil
	}
	pts := make([]Point, 0, r.cells.Size())
	r.cells.Each(func(p Point) {
		pts = append(pts, p)
	})
	slices.SortFunc(pts, func(a, b Point) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return pts
}

// Bounds returns the bounding rectangle of the region.
func (r Region) Bounds() Rect {
	var b Rect
	if !r.init {
		return b
	}
	r.cells.Each(func(p Point) {
		b = b.Union(Rect{X: p.X, Y: p.Y, W: 1, H: 1})
	})
	return b
}

// Clone returns an independent copy of the region.
func (r Region) Clone() Region {
	return r.Translate(Point{})
}

// Translate returns a copy of the region moved by d.
func (r Region) Translate(d Point) Region {
	out := NewRegion()
	if r.init {
		r.cells.Each(func(p Point) {
			out.cells.Put(p.Add(d))
		})
	}
	return out
}

// Intersect returns the cells present in both r and o.
func (r Region) Intersect(o Region) Region {
	out := NewRegion()
	if r.init {
		r.cells.Each(func(p Point) {
			if o.Contains(p) {
				out.cells.Put(p)
			}
		})
	}
	return out
}
