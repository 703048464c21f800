package tileset

import (
	"math/rand/v2"

	"wang-painter/internal/random"
	"wang-painter/internal/wang"
)

// Index groups the tiles of a set by signature so fills can look up every
// tile compatible with a partial signature. An Index is immutable and safe
// for concurrent use.
type Index struct {
	set    *TileSet
	groups map[wang.WangID][]TileID
	order  []wang.WangID // distinct signatures in tile order
	all    []TileID
}

// NewIndex builds the index of s.
func NewIndex(s *TileSet) *Index {
	idx := &Index{
		set:    s,
		groups: make(map[wang.WangID][]TileID),
		all:    make([]TileID, 0, len(s.Tiles)),
	}
	for _, t := range s.Tiles {
		if _, seen := idx.groups[t.WangID]; !seen {
			idx.order = append(idx.order, t.WangID)
		}
		idx.groups[t.WangID] = append(idx.groups[t.WangID], t.ID)
		idx.all = append(idx.all, t.ID)
	}
	return idx
}

// Len returns the number of indexed tiles.
func (idx *Index) Len() int {
	return len(idx.all)
}

// All returns every tile in set order.
func (idx *Index) All() []TileID {
	return append([]TileID(nil), idx.all...)
}

// CandidatesExact returns the tiles whose signature equals w.
func (idx *Index) CandidatesExact(w wang.WangID) []TileID {
	return append([]TileID(nil), idx.groups[w]...)
}

// CandidatesMatching returns the tiles that agree with desired on every
// slot where mask is non-zero. Other slots may hold any color.
func (idx *Index) CandidatesMatching(desired, mask wang.WangID) []TileID {
	mask = mask.Mask()
	if mask == 0 {
		return idx.All()
	}
	if mask == wang.FullMask {
		return idx.CandidatesExact(desired)
	}
	want := desired & mask
	var out []TileID
	for _, w := range idx.order {
		if w&mask == want {
			out = append(out, idx.groups[w]...)
		}
	}
	return out
}

// Pick draws one of candidates weighted by tile probability. It returns
// false when no candidate has a positive weight.
func (idx *Index) Pick(candidates []TileID, rng *rand.Rand) (TileID, bool) {
	var p random.Picker[TileID]
	for _, id := range candidates {
		p.Add(id, idx.set.Probability(id))
	}
	return p.Pick(rng)
}

// Match combines CandidatesMatching and Pick.
func (idx *Index) Match(c wang.Constraint, rng *rand.Rand) (TileID, bool) {
	return idx.Pick(idx.CandidatesMatching(c.Desired, c.Mask), rng)
}
