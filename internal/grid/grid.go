package grid

// Grid is a sparse mapping from cell to value. Cells never set read as the
// zero value of T. The zero value is ready to use.
type Grid[T any] struct {
	cells map[Point]T
}

// NewGrid returns an empty grid.
func NewGrid[T any]() *Grid[T] {
	return &Grid[T]{cells: make(map[Point]T)}
}

// Get returns the value at p, or the zero value when p was never set.
// A nil grid behaves as empty.
func (g *Grid[T]) Get(p Point) T {
	if g == nil {
		var zero T
		return zero
	}
	return g.cells[p]
}

// Lookup returns the value at p and whether it was set.
func (g *Grid[T]) Lookup(p Point) (T, bool) {
	if g == nil {
		var zero T
		return zero, false
	}
	v, ok := g.cells[p]
	return v, ok
}

// Set stores v at p.
func (g *Grid[T]) Set(p Point, v T) {
	if g.cells == nil {
		g.cells = make(map[Point]T)
	}
	g.cells[p] = v
}

// Len returns the number of cells that were set.
func (g *Grid[T]) Len() int {
	if g == nil {
		return 0
	}
	return len(g.cells)
}

// Region returns the set of cells that were set.
func (g *Grid[T]) Region() Region {
	r := NewRegion()
	if g == nil {
		return r
	}
	for p := range g.cells {
		r.Add(p)
	}
	return r
}
