// Package filler chooses Wang tiles for a region of cells so that every
// placed tile matches the colors of its already placed neighbors.
//
// Filling is a single greedy pass: cells are visited in row-major order
// and each result is written to the target layer at once, so later cells
// see it. There is no backtracking. A cell with no compatible tile is left
// empty and reported in Result.Invalid.
package filler

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"wang-painter/internal/grid"
	"wang-painter/internal/random"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
	"wang-painter/internal/wang"
)

// Constraints holds the caller supplied constraint of each cell. Cells
// without an entry are unconstrained.
type Constraints = grid.Grid[wang.Constraint]

// Result summarizes one fill.
type Result struct {
	Filled  int         // cells that received a tile
	Erased  int         // cells emptied on purpose when erasing is enabled
	Invalid grid.Region // cells no tile could satisfy
}

// Filler resolves cells against one tile set and one map layout. A Filler
// owns its random source and must not be used from several goroutines at
// once; the tile set and background layers may be shared between fillers.
type Filler struct {
	set    *tileset.TileSet
	index  *tileset.Index
	oracle topology.Oracle
	rng    *rand.Rand
	log    *zap.Logger

	preferDesired bool
	erasing       bool
}

// Option configures a Filler.
type Option func(*Filler)

// WithRand sets the random source used to pick among equally fitting
// tiles.
func WithRand(rng *rand.Rand) Option {
	return func(f *Filler) { f.rng = rng }
}

// WithSeed makes the fill reproducible.
func WithSeed(seed uint64) Option {
	return func(f *Filler) { f.rng = random.New(seed) }
}

// WithLogger sets the logger for fill summaries.
func WithLogger(log *zap.Logger) Option {
	return func(f *Filler) { f.log = log }
}

// WithPreferDesired makes the filler favor tiles that also agree with the
// unmasked desired colors of a constraint. Among the matching tiles only
// those with the fewest disagreements are drawn from.
func WithPreferDesired(on bool) Option {
	return func(f *Filler) { f.preferDesired = on }
}

// WithErasing lets the filler leave a cell empty on purpose when nothing
// around it asks for a color. The empty cell then competes with the
// matching tiles at weight 1.
func WithErasing(on bool) Option {
	return func(f *Filler) { f.erasing = on }
}

// New returns a filler for set. A nil oracle means an orthogonal map.
func New(set *tileset.TileSet, oracle topology.Oracle, opts ...Option) *Filler {
	if oracle == nil {
		oracle = topology.Rect{}
	}
	f := &Filler{
		set:    set,
		index:  set.Index(),
		oracle: oracle,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = random.New(rand.Uint64())
	}
	return f
}

// FindFittingCell picks a tile for p that satisfies the constraint of p
// in constraints, if any, and matches its placed neighbors. Neighbors
// inside region are read from front, the others from back. It returns
// false when no tile fits. Erasing does not apply here: a cell that fits
// always gets a tile.
func (f *Filler) FindFittingCell(back, front *grid.Layer, constraints *Constraints, region grid.Region, p grid.Point) (tileset.TileID, bool) {
	return f.resolve(back, front, region, p, constraints.Get(p), false)
}

// FillRegion fills every cell of region in target using only the
// neighbors for guidance.
func (f *Filler) FillRegion(target, back *grid.Layer, region grid.Region) Result {
	res, _ := f.FillContext(context.Background(), target, back, nil, region)
	return res
}

// FillConstraints fills every cell of region in target, honoring the
// per cell constraints first and the neighbors second.
func (f *Filler) FillConstraints(target, back *grid.Layer, constraints *Constraints, region grid.Region) Result {
	res, _ := f.FillContext(context.Background(), target, back, constraints, region)
	return res
}

// FillContext is FillConstraints for large regions. It checks ctx before
// each row and stops with ctx.Err() when it is done; rows already filled
// stay in target.
func (f *Filler) FillContext(ctx context.Context, target, back *grid.Layer, constraints *Constraints, region grid.Region) (Result, error) {
	res := Result{Invalid: grid.NewRegion()}
	points := region.Points()

	// The region starts empty so that stale tiles neither constrain
	// neighbors nor survive as results.
	for _, p := range points {
		target.Erase(p)
	}

	row, first := 0, true
	for _, p := range points {
		if first || p.Y != row {
			if err := ctx.Err(); err != nil {
				f.log.Debug("fill cancelled", zap.Int("filled", res.Filled), zap.Int("row", p.Y))
				return res, err
			}
			row, first = p.Y, false
		}

		id, ok := f.resolve(back, target, region, p, constraints.Get(p), f.erasing)
		switch {
		case !ok:
			res.Invalid.Add(p)
		case id == erased:
			res.Erased++
		default:
			target.SetCell(p, id)
			res.Filled++
		}
	}

	f.log.Debug("fill complete",
		zap.String("tileset", f.set.Name),
		zap.Int("cells", len(points)),
		zap.Int("filled", res.Filled),
		zap.Int("erased", res.Erased),
		zap.Int("invalid", res.Invalid.Len()),
	)
	return res, nil
}

// erased marks a cell deliberately left empty.
const erased tileset.TileID = -1

// resolve picks the tile for p, or erased when erase is set, or reports
// that nothing fits.
func (f *Filler) resolve(back, front *grid.Layer, region grid.Region, p grid.Point, c wang.Constraint, erase bool) (tileset.TileID, bool) {
	desired, mask, ok := f.cellConstraint(back, front, region, p, c)
	if !ok {
		return 0, false
	}
	return f.pick(desired, mask, c, erase)
}

// cellConstraint combines the caller constraint for p with the colors of
// its placed neighbors. Caller masked slots win. Two neighbors asking for
// different colors on one slot make the cell unsatisfiable.
func (f *Filler) cellConstraint(back, front *grid.Layer, region grid.Region, p grid.Point, c wang.Constraint) (desired, mask wang.WangID, ok bool) {
	callerMask := c.NormalizedMask()
	desired = c.Desired & callerMask
	mask = callerMask
	ok = true

	set := func(slot, color int) {
		if color == 0 || callerMask.IndexColor(slot) != 0 {
			return
		}
		if mask.IndexColor(slot) != 0 {
			if desired.IndexColor(slot) != color {
				ok = false
			}
			return
		}
		desired = desired.WithIndexColor(slot, color)
		mask = mask.WithIndexColor(slot, wang.MaxColor)
	}

	for slot, n := range f.oracle.Neighbors(p) {
		w, placed := f.placedWangID(back, front, region, n)
		if !placed {
			continue
		}
		opposite := wang.OppositeSlot(slot)
		set(slot, w.IndexColor(opposite))
		if !wang.IsCorner(slot) {
			set(wang.NextSlot(slot), w.IndexColor(wang.PreviousSlot(opposite)))
			set(wang.PreviousSlot(slot), w.IndexColor(wang.NextSlot(opposite)))
		}
	}
	return desired, mask, ok
}

// placedWangID returns the signature of the tile at p, read from front
// inside region and from back outside it.
func (f *Filler) placedWangID(back, front *grid.Layer, region grid.Region, p grid.Point) (wang.WangID, bool) {
	layer := back
	if region.Contains(p) {
		layer = front
	}
	id, ok := layer.CellAt(p)
	if !ok {
		return 0, false
	}
	return f.set.WangIDOf(id)
}

// pick draws among the tiles matching desired on mask.
func (f *Filler) pick(desired, mask wang.WangID, c wang.Constraint, erase bool) (tileset.TileID, bool) {
	candidates := f.index.CandidatesMatching(desired, mask)
	canErase := erase && desired&mask == 0

	if f.preferDesired {
		candidates = f.leastPenalty(candidates, c)
	}

	var picker random.Picker[tileset.TileID]
	for _, id := range candidates {
		picker.Add(id, f.set.Probability(id))
	}
	if canErase {
		picker.Add(erased, 1)
	}
	return picker.Pick(f.rng)
}

// leastPenalty keeps the drawable candidates that disagree with the fewest
// colored but unmasked slots of c.Desired.
func (f *Filler) leastPenalty(candidates []tileset.TileID, c wang.Constraint) []tileset.TileID {
	callerMask := c.NormalizedMask()
	best := wang.NumSlots + 1
	var out []tileset.TileID
	for _, id := range candidates {
		if f.set.Probability(id) <= 0 {
			continue
		}
		w, _ := f.set.WangIDOf(id)
		penalty := 0
		for i := 0; i < wang.NumSlots; i++ {
			want := c.Desired.IndexColor(i)
			if want != 0 && callerMask.IndexColor(i) == 0 && w.IndexColor(i) != want {
				penalty++
			}
		}
		switch {
		case penalty < best:
			best = penalty
			out = append(out[:0], id)
		case penalty == best:
			out = append(out, id)
		}
	}
	return out
}

// Mismatched returns the placed cells of layer whose tile disagrees with
// a placed neighbor, or whose neighbors disagree among themselves. A
// layer built by fills without invalid cells has none.
func (f *Filler) Mismatched(layer *grid.Layer) grid.Region {
	out := grid.NewRegion()
	layer.Each(func(p grid.Point, id tileset.TileID) {
		w, known := f.set.WangIDOf(id)
		desired, mask, ok := f.cellConstraint(layer, layer, grid.Region{}, p, wang.Constraint{})
		if !known || !ok || w&mask != desired {
			out.Add(p)
		}
	})
	return out
}
