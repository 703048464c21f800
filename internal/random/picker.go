// Package random provides the seedable weighted choice used to break ties
// between equally fitting tiles.
package random

import (
	"math"
	"math/rand/v2"
	"sort"
)

// New returns a generator seeded with seed. The same seed always yields
// the same sequence.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Picker chooses among items with probability proportional to their
// weight. Items with a weight of zero or less are never chosen.
type Picker[T any] struct {
	items      []T
	cumulative []float64
	total      float64
}

// Add registers item with the given relative weight.
func (p *Picker[T]) Add(item T, weight float64) {
	if !(weight > 0) || math.IsInf(weight, 1) {
		return
	}
	p.total += weight
	p.items = append(p.items, item)
	p.cumulative = append(p.cumulative, p.total)
}

// Len returns the number of pickable items.
func (p *Picker[T]) Len() int {
	return len(p.items)
}

// IsEmpty reports whether nothing can be picked.
func (p *Picker[T]) IsEmpty() bool {
	return len(p.items) == 0
}

// Clear removes every item.
func (p *Picker[T]) Clear() {
	p.items = p.items[:0]
	p.cumulative = p.cumulative[:0]
	p.total = 0
}

// Total returns the sum of all weights.
func (p *Picker[T]) Total() float64 {
	return p.total
}

// Pick draws one item. It returns false when the picker is empty.
func (p *Picker[T]) Pick(rng *rand.Rand) (T, bool) {
	var zero T
	if len(p.items) == 0 {
		return zero, false
	}
	r := rng.Float64() * p.total
	i := sort.Search(len(p.cumulative), func(i int) bool {
		return p.cumulative[i] > r
	})
	if i >= len(p.items) {
		i = len(p.items) - 1
	}
	return p.items[i], true
}
