package tileset

import (
	"math"
	"slices"
	"testing"

	"wang-painter/internal/random"
	"wang-painter/internal/wang"
)

func indexFixture(t *testing.T) *TileSet {
	t.Helper()
	s := New("fixture", 3)
	tiles := []struct {
		id TileID
		w  string
		p  float64
	}{
		{0, "1,0,1,0,1,0,1,0", 1},
		{1, "1,0,2,0,1,0,2,0", 1},
		{2, "2,0,2,0,2,0,2,0", 2},
		{3, "1,0,1,0,1,0,1,0", 1}, // same signature as 0
		{4, "3,0,1,0,1,0,1,0", 0},
		{5, "1,1,1,1,1,1,1,1", 1},
	}
	for _, tt := range tiles {
		if err := s.Add(Tile{ID: tt.id, WangID: mustParse(t, tt.w), Probability: tt.p}); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestCandidatesMatchingZeroMaskIsAll(t *testing.T) {
	idx := indexFixture(t).Index()
	for _, desired := range []string{"0,0,0,0,0,0,0,0", "2,2,2,2,2,2,2,2", "3,0,1,0,1,0,1,0"} {
		got := idx.CandidatesMatching(mustParse(t, desired), 0)
		if !slices.Equal(got, idx.All()) {
			t.Errorf("CandidatesMatching(%s, 0) = %v, want %v", desired, got, idx.All())
		}
	}
}

func TestCandidatesMatchingFullMaskIsExact(t *testing.T) {
	idx := indexFixture(t).Index()
	for _, desired := range []string{"1,0,1,0,1,0,1,0", "2,0,2,0,2,0,2,0", "1,1,1,1,1,1,1,1", "4,4,4,4,4,4,4,4"} {
		w := mustParse(t, desired)
		got := idx.CandidatesMatching(w, wang.FullMask)
		want := idx.CandidatesExact(w)
		if !slices.Equal(got, want) {
			t.Errorf("CandidatesMatching(%s, full) = %v, want %v", desired, got, want)
		}
	}
	if got := idx.CandidatesExact(mustParse(t, "1,0,1,0,1,0,1,0")); !slices.Equal(got, []TileID{0, 3}) {
		t.Errorf("CandidatesExact grouped = %v, want [0 3]", got)
	}
}

func TestCandidatesMatchingPartial(t *testing.T) {
	idx := indexFixture(t).Index()
	tests := []struct {
		name    string
		desired string
		mask    string
		want    []TileID
	}{
		{"top is 1", "1,0,0,0,0,0,0,0", "15,0,0,0,0,0,0,0", []TileID{0, 3, 1, 5}},
		{"right is 2", "0,0,2,0,0,0,0,0", "0,0,15,0,0,0,0,0", []TileID{1, 2}},
		{"masked corner must be zero", "1,0,0,0,0,0,0,0", "15,15,0,0,0,0,0,0", []TileID{0, 3, 1}},
		{"desired ignored where unmasked", "3,9,9,9,9,9,9,9", "15,0,0,0,0,0,0,0", []TileID{4}},
		{"mask nibble normalized", "0,0,2,0,0,0,0,0", "0,0,1,0,0,0,0,0", []TileID{1, 2}},
		{"no match", "4,0,0,0,0,0,0,0", "15,0,0,0,0,0,0,0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.CandidatesMatching(mustParse(t, tt.desired), mustParse(t, tt.mask))
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZeroProbabilityMatchesButIsNeverPicked(t *testing.T) {
	idx := indexFixture(t).Index()
	c := wang.Constraint{}.Constrain(wang.Top, 3)

	candidates := idx.CandidatesMatching(c.Desired, c.Mask)
	if !slices.Equal(candidates, []TileID{4}) {
		t.Fatalf("candidates = %v, want [4]", candidates)
	}
	rng := random.New(1)
	for i := 0; i < 100; i++ {
		if id, ok := idx.Match(c, rng); ok {
			t.Fatalf("Match picked zero weight tile %d", id)
		}
	}
}

func TestPickWeightedDrawLaw(t *testing.T) {
	idx := indexFixture(t).Index()
	candidates := []TileID{0, 1, 2}
	weights := map[TileID]float64{0: 1, 1: 1, 2: 2}

	const n = 100000
	counts := make(map[TileID]int)
	rng := random.New(2024)
	for i := 0; i < n; i++ {
		id, ok := idx.Pick(candidates, rng)
		if !ok {
			t.Fatal("Pick failed on non-empty candidates")
		}
		counts[id]++
	}
	for id, w := range weights {
		want := w / 4
		got := float64(counts[id]) / n
		if math.Abs(got-want) > 0.01 {
			t.Errorf("tile %d frequency = %.4f, want %.4f", id, got, want)
		}
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := New("empty", 2).Index()
	if idx.Len() != 0 {
		t.Fatalf("Len = %d", idx.Len())
	}
	if _, ok := idx.Match(wang.Constraint{}, random.New(0)); ok {
		t.Error("empty index matched a tile")
	}
}

func TestIndexRebuiltAfterAdd(t *testing.T) {
	s := New("grow", 1)
	if s.Index().Len() != 0 {
		t.Fatal("expected empty index")
	}
	_ = s.AddTile(0, mustParse(t, "1,1,1,1,1,1,1,1"))
	if s.Index().Len() != 1 {
		t.Error("index not rebuilt after Add")
	}
}
