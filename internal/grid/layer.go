package grid

import "wang-painter/internal/tileset"

// Layer is a sparse tile layer: each cell holds one tile of a tile set or
// nothing. Layers are not safe for concurrent writes.
type Layer struct {
	cells map[Point]tileset.TileID
}

// NewLayer returns an empty layer.
func NewLayer() *Layer {
	return &Layer{cells: make(map[Point]tileset.TileID)}
}

// CellAt returns the tile at p and whether the cell is occupied.
// A nil layer has no tiles.
func (l *Layer) CellAt(p Point) (tileset.TileID, bool) {
	if l == nil {
		return 0, false
	}
	id, ok := l.cells[p]
	return id, ok
}

// SetCell places tile id at p.
func (l *Layer) SetCell(p Point, id tileset.TileID) {
	if l.cells == nil {
		l.cells = make(map[Point]tileset.TileID)
	}
	l.cells[p] = id
}

// Erase empties the cell at p.
func (l *Layer) Erase(p Point) {
	delete(l.cells, p)
}

// Len returns the number of occupied cells.
func (l *Layer) Len() int {
	if l == nil {
		return 0
	}
	return len(l.cells)
}

// Region returns the set of occupied cells.
func (l *Layer) Region() Region {
	r := NewRegion()
	if l == nil {
		return r
	}
	for p := range l.cells {
		r.Add(p)
	}
	return r
}

// Bounds returns the bounding rectangle of the occupied cells.
func (l *Layer) Bounds() Rect {
	var b Rect
	if l == nil {
		return b
	}
	for p := range l.cells {
		b = b.Union(Rect{X: p.X, Y: p.Y, W: 1, H: 1})
	}
	return b
}

// Each calls fn for every occupied cell in row-major order.
func (l *Layer) Each(fn func(p Point, id tileset.TileID)) {
	for _, p := range l.Region().Points() {
		fn(p, l.cells[p])
	}
}

// Clone returns an independent copy of the layer.
func (l *Layer) Clone() *Layer {
	c := NewLayer()
	if l == nil {
		return c
	}
	for p, id := range l.cells {
		c.cells[p] = id
	}
	return c
}

// Merge writes every cell of src into l, replacing what was there. Cells
// of region that src leaves empty are erased from l. This is how a filled
// stroke is committed onto the layer it was computed against.
func (l *Layer) Merge(src *Layer, region Region) {
	for _, p := range region.Points() {
		if id, ok := src.CellAt(p); ok {
			l.SetCell(p, id)
		} else {
			l.Erase(p)
		}
	}
}
