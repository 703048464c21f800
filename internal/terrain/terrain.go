// Package terrain generates whole maps: a noise field picks a preferred
// color for every cell and the filler turns those preferences into
// matching tiles.
package terrain

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wang-painter/internal/filler"
	"wang-painter/internal/grid"
	"wang-painter/internal/logger"
	"wang-painter/internal/maps"
	"wang-painter/internal/noise"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
	"wang-painter/internal/wang"
)

// Params describe one generated map.
type Params struct {
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Seed      uint64        `json:"seed"`
	Noise     noise.Fractal `json:"noise"`
	ChunkRows int           `json:"chunk_rows"` // rows filled per pass, checked for cancellation between passes
}

// DefaultParams returns a 64x32 map with default noise.
func DefaultParams() Params {
	return Params{Width: 64, Height: 32, Seed: 1, Noise: noise.DefaultFractal(), ChunkRows: 16}
}

// Preferences returns the constraint of every cell of rect: each slot
// prefers the noise color of the cell without requiring it.
func Preferences(set *tileset.TileSet, p Params, rect grid.Rect) *filler.Constraints {
	src := noise.New(p.Seed)
	out := grid.NewGrid[wang.Constraint]()
	n := set.ColorCount()
	for _, pt := range rect.Points() {
		color := noise.Level(src.Sample(p.Noise, float64(pt.X), float64(pt.Y)), n)
		var c wang.Constraint
		for i := 0; i < wang.NumSlots; i++ {
			c = c.Prefer(i, color)
		}
		out.Set(pt, c)
	}
	return out
}

// Generate builds a map of p.Width by p.Height cells from set. Rows are
// filled in chunks of p.ChunkRows and ctx is checked between chunks. The
// returned result covers the whole map.
func Generate(ctx context.Context, set *tileset.TileSet, oracle topology.Oracle, p Params) (*grid.Layer, filler.Result, error) {
	res := filler.Result{Invalid: grid.NewRegion()}
	if p.Width <= 0 || p.Height <= 0 || p.Width > maps.MaxCells/p.Height {
		return nil, res, fmt.Errorf("invalid map size %dx%d", p.Width, p.Height)
	}
	if set.ColorCount() == 0 {
		return nil, res, fmt.Errorf("tile set %q has no colors", set.Name)
	}
	if p.ChunkRows <= 0 {
		p.ChunkRows = p.Height
	}

	log := logger.L(ctx).With(zap.String("tileset", set.Name), zap.Uint64("seed", p.Seed))
	f := filler.New(set, oracle,
		filler.WithSeed(p.Seed),
		filler.WithPreferDesired(true),
		filler.WithLogger(log),
	)
	layer := grid.NewLayer()

	for top := 0; top < p.Height; top += p.ChunkRows {
		if err := ctx.Err(); err != nil {
			return layer, res, err
		}
		rows := min(p.ChunkRows, p.Height-top)
		rect := grid.Rect{X: 0, Y: top, W: p.Width, H: rows}
		region := grid.RectRegion(rect)
		prefs := Preferences(set, p, rect)

		// Earlier chunks are read back from the same layer.
		chunk, err := f.FillContext(ctx, layer, layer, prefs, region)
		res.Filled += chunk.Filled
		res.Erased += chunk.Erased
		res.Invalid.AddRegion(chunk.Invalid)
		if err != nil {
			return layer, res, err
		}
		log.Debug("generated rows", zap.Int("from", top), zap.Int("rows", rows), zap.Int("invalid", chunk.Invalid.Len()))
	}

	log.Info("generated map",
		zap.Int("width", p.Width),
		zap.Int("height", p.Height),
		zap.Int("filled", res.Filled),
		zap.Int("invalid", res.Invalid.Len()),
	)
	return layer, res, nil
}
