// Package brush turns a paint action (one color on a corner, an edge or a
// whole tile) into the cell constraints and region handed to the filler,
// and commits the filled result.
package brush

import (
	"errors"
	"fmt"

	"wang-painter/internal/filler"
	"wang-painter/internal/grid"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
	"wang-painter/internal/wang"
)

// ErrUnsatisfiable is returned by Apply when some cell of a stroke has no
// fitting tile. The layer is left unchanged.
var ErrUnsatisfiable = errors.New("stroke cannot be satisfied")

// Mode says which parts of a tile the current color is painted on.
type Mode int

const (
	Idle Mode = iota
	PaintCorner
	PaintEdge
	PaintEdgeAndCorner
)

func (m Mode) String() string {
	switch m {
	case PaintCorner:
		return "corner"
	case PaintEdge:
		return "edge"
	case PaintEdgeAndCorner:
		return "edge+corner"
	default:
		return "idle"
	}
}

// ModeForColor picks the paint mode from where color appears in set: a
// color only found on corners paints corners, one only found on edges
// paints edges, anything else paints both.
func ModeForColor(set *tileset.TileSet, color int) Mode {
	if set == nil || color < 0 || color > set.ColorCount() {
		return Idle
	}
	edge, corner := set.ColorUsage(color)
	switch {
	case edge == corner:
		return PaintEdgeAndCorner
	case edge:
		return PaintEdge
	default:
		return PaintCorner
	}
}

// Stroke is what one paint action asks of the filler.
type Stroke struct {
	Constraints *filler.Constraints
	Region      grid.Region
}

func newStroke() Stroke {
	return Stroke{Constraints: grid.NewGrid[wang.Constraint](), Region: grid.NewRegion()}
}

func (s Stroke) set(p grid.Point, c wang.Constraint) {
	s.Region.Add(p)
	s.Constraints.Set(p, c)
}

// Brush paints one color of a tile set. Color 0 erases.
type Brush struct {
	set    *tileset.TileSet
	oracle topology.Oracle
	fill   *filler.Filler
	color  int
	mode   Mode
}

// New returns a brush for set and oracle with color selected. A nil
// oracle means an orthogonal map. opts are passed on to the filler.
func New(set *tileset.TileSet, oracle topology.Oracle, color int, opts ...filler.Option) *Brush {
	if oracle == nil {
		oracle = topology.Rect{}
	}
	opts = append([]filler.Option{filler.WithPreferDesired(true), filler.WithErasing(true)}, opts...)
	b := &Brush{
		set:    set,
		oracle: oracle,
		fill:   filler.New(set, oracle, opts...),
	}
	b.SetColor(color)
	return b
}

// SetColor selects the paint color and the matching mode.
func (b *Brush) SetColor(color int) {
	b.color = color
	b.mode = ModeForColor(b.set, color)
}

// Color returns the selected color.
func (b *Brush) Color() int { return b.color }

// Mode returns the paint mode of the selected color.
func (b *Brush) Mode() Mode { return b.mode }

// current returns the signature of the tile at p, or 0.
func (b *Brush) current(layer *grid.Layer, p grid.Point) wang.WangID {
	id, ok := layer.CellAt(p)
	if !ok {
		return 0
	}
	w, _ := b.set.WangIDOf(id)
	return w
}

// keep starts a constraint that prefers what is already at p.
func (b *Brush) keep(layer *grid.Layer, p grid.Point) wang.Constraint {
	return wang.Constraint{Desired: b.current(layer, p)}
}

// Corner paints the vertex at the top left corner of p. The four cells
// sharing that vertex get the color on the corner they touch.
func (b *Brush) Corner(layer *grid.Layer, p grid.Point) Stroke {
	s := newStroke()
	if b.mode == Idle {
		return s
	}
	cells := [4]grid.Point{
		b.oracle.Neighbor(p, wang.Top),
		p,
		b.oracle.Neighbor(p, wang.Left),
		b.oracle.Neighbor(p, wang.TopLeft),
	}
	for i, q := range cells {
		c := b.keep(layer, q)
		s.set(q, c.Constrain((i+2)%4*2+1, b.color))
	}
	return s
}

// Edge paints edge slot of p and the matching edge of the cell across it.
func (b *Brush) Edge(layer *grid.Layer, p grid.Point, slot int) Stroke {
	s := newStroke()
	if b.mode == Idle {
		return s
	}
	if wang.IsCorner(slot) {
		panic(fmt.Sprintf("brush: slot %d is not an edge", slot))
	}
	across := b.oracle.Neighbor(p, slot)
	s.set(p, b.keep(layer, p).Constrain(slot, b.color))
	s.set(across, b.keep(layer, across).Constrain(wang.OppositeSlot(slot), b.color))
	return s
}

// Tile paints every slot of p that the mode allows and the facing slots
// of its neighbors.
func (b *Brush) Tile(layer *grid.Layer, p grid.Point) Stroke {
	s := newStroke()
	if b.mode == Idle {
		return s
	}

	center := b.keep(layer, p)
	for i := 0; i < wang.NumSlots; i++ {
		if b.paints(i) {
			center = center.Constrain(i, b.color)
		}
	}
	s.set(p, center)

	for i, q := range b.oracle.Neighbors(p) {
		corner := wang.IsCorner(i)
		if b.mode == PaintEdge && corner {
			continue
		}
		c := b.keep(layer, q)
		if corner || b.mode != PaintCorner {
			c = c.Constrain(wang.OppositeSlot(i), b.color)
		}
		if !corner && b.mode != PaintEdge {
			c = c.Constrain((i+3)%wang.NumSlots, b.color)
			c = c.Constrain((i+5)%wang.NumSlots, b.color)
		}
		s.set(q, c)
	}
	return s
}

func (b *Brush) paints(slot int) bool {
	switch b.mode {
	case PaintCorner:
		return wang.IsCorner(slot)
	case PaintEdge:
		return !wang.IsCorner(slot)
	case PaintEdgeAndCorner:
		return true
	}
	return false
}

// At paints the part of p under slot, the way a pointer hovering over
// that ninth of the tile would. Corner slots paint the vertex there, edge
// slots paint the edge, and the center (wang.NumSlots) paints the tile.
func (b *Brush) At(layer *grid.Layer, p grid.Point, slot int) Stroke {
	if slot == wang.NumSlots {
		return b.Tile(layer, p)
	}
	mode := b.mode
	if mode == PaintEdgeAndCorner {
		mode = PaintEdge
		if wang.IsCorner(slot) {
			mode = PaintCorner
		}
	}
	switch mode {
	case PaintCorner:
		return b.Corner(layer, b.vertexCell(p, slot))
	case PaintEdge:
		if wang.IsCorner(slot) {
			return newStroke()
		}
		return b.Edge(layer, p, slot)
	}
	return newStroke()
}

// vertexCell returns the cell whose top left vertex is the given corner
// of p. Edge slots pick the nearest corner clockwise.
func (b *Brush) vertexCell(p grid.Point, slot int) grid.Point {
	if !wang.IsCorner(slot) {
		slot = wang.NextSlot(slot)
	}
	switch slot {
	case wang.TopRight:
		return b.oracle.Neighbor(p, wang.Right)
	case wang.BottomRight:
		return b.oracle.Neighbor(p, wang.BottomRight)
	case wang.BottomLeft:
		return b.oracle.Neighbor(p, wang.Bottom)
	}
	return p
}

// Preview fills s against layer without changing it. The returned layer
// holds only the cells of the stroke region.
func (b *Brush) Preview(layer *grid.Layer, s Stroke) (*grid.Layer, filler.Result) {
	stamp := grid.NewLayer()
	res := b.fill.FillConstraints(stamp, layer, s.Constraints, s.Region)
	return stamp, res
}

// Apply fills s and writes it into layer. When a cell cannot be satisfied
// nothing is written and the error wraps ErrUnsatisfiable.
func (b *Brush) Apply(layer *grid.Layer, s Stroke) (filler.Result, error) {
	stamp, res := b.Preview(layer, s)
	if !res.Invalid.IsEmpty() {
		return res, fmt.Errorf("%w: %d of %d cells", ErrUnsatisfiable, res.Invalid.Len(), s.Region.Len())
	}
	layer.Merge(stamp, s.Region)
	return res, nil
}
