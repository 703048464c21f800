package canvas

import (
	"context"
	"fmt"

	"wang-painter/internal/brush"
	"wang-painter/internal/filler"
	"wang-painter/internal/grid"
	"wang-painter/internal/maps"
	"wang-painter/internal/noise"
	"wang-painter/internal/terrain"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
)

// Board is the shared map being painted, together with the tile set and
// layout it is painted with. A Board is owned by one Loop.
type Board struct {
	Map     *maps.Map
	Set     *tileset.TileSet
	Oracle  topology.Oracle
	Invalid grid.Region // cells the last fill could not satisfy

	Seed      uint64
	Noise     noise.Fractal
	ChunkRows int
}

// NewBoard wraps m. Every placed tile of m must belong to set.
func NewBoard(m *maps.Map, set *tileset.TileSet) (*Board, error) {
	if err := m.Validate(set); err != nil {
		return nil, err
	}
	oracle, err := m.Oracle()
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", m.Name, err)
	}
	return &Board{
		Map:       m,
		Set:       set,
		Oracle:    oracle,
		Invalid:   grid.NewRegion(),
		Seed:      1,
		Noise:     noise.DefaultFractal(),
		ChunkRows: terrain.DefaultParams().ChunkRows,
	}, nil
}

// Clamp moves p inside the map.
func (b *Board) Clamp(p grid.Point) grid.Point {
	return grid.Pt(min(max(p.X, 0), b.Map.Width-1), min(max(p.Y, 0), b.Map.Height-1))
}

// NewBrush returns a brush painting color on this board.
func (b *Board) NewBrush(color int, opts ...filler.Option) *brush.Brush {
	return brush.New(b.Set, b.Oracle, color, opts...)
}

// Regenerate replaces the whole map with a generated one for seed.
func (b *Board) Regenerate(ctx context.Context, seed uint64) (filler.Result, error) {
	layer, res, err := terrain.Generate(ctx, b.Set, b.Oracle, terrain.Params{
		Width:     b.Map.Width,
		Height:    b.Map.Height,
		Seed:      seed,
		Noise:     b.Noise,
		ChunkRows: b.ChunkRows,
	})
	if err != nil {
		return res, err
	}
	b.Seed = seed
	b.Map.Layer = layer
	b.Invalid = res.Invalid
	return res, nil
}

// Paint applies a whole-tile stroke of br at p. Stroke cells outside the
// map are dropped. A stroke that cannot be satisfied leaves the map as it
// was.
func (b *Board) Paint(br *brush.Brush, p grid.Point) (filler.Result, error) {
	if !b.Map.Bounds().Contains(p) {
		return filler.Result{}, fmt.Errorf("cell %v is outside the map", p)
	}
	s := br.Tile(b.Map.Layer, p)
	s.Region = s.Region.Intersect(grid.RectRegion(b.Map.Bounds()))
	res, err := br.Apply(b.Map.Layer, s)
	if err != nil {
		return res, err
	}
	for _, q := range s.Region.Points() {
		b.Invalid.Remove(q)
	}
	return res, nil
}

// Snapshot returns a copy of the map safe to read while the board keeps
// changing.
func (b *Board) Snapshot() *maps.Map {
	m := *b.Map
	m.Layer = b.Map.Layer.Clone()
	return &m
}
