package terrain

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"wang-painter/internal/grid"
	"wang-painter/internal/logger"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
	"wang-painter/internal/wang"
)

func testContext(t *testing.T) context.Context {
	return logger.NewContext(context.Background(), zaptest.NewLogger(t))
}

func TestGenerateFillsWholeMap(t *testing.T) {
	set := tileset.Default()
	p := Params{Width: 20, Height: 11, Seed: 3, Noise: DefaultParams().Noise, ChunkRows: 4}

	layer, res, err := Generate(testContext(t), set, topology.Rect{}, p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Invalid.IsEmpty() {
		t.Fatalf("invalid cells: %v", res.Invalid.Points())
	}
	if res.Filled != 220 || layer.Len() != 220 {
		t.Fatalf("filled %d, layer %d, want 220", res.Filled, layer.Len())
	}

	// Chunk seams must match like any other neighbors.
	for _, c := range layer.Region().Points() {
		id, _ := layer.CellAt(c)
		w, _ := set.WangIDOf(id)
		below, ok := layer.CellAt(c.Add(grid.Pt(0, 1)))
		if !ok {
			continue
		}
		bw, _ := set.WangIDOf(below)
		if w.IndexColor(wang.BottomLeft) != bw.IndexColor(wang.TopLeft) || w.IndexColor(wang.BottomRight) != bw.IndexColor(wang.TopRight) {
			t.Errorf("cell %v %v does not match %v below", c, w, bw)
		}
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	set := tileset.Default()
	p := DefaultParams()
	p.Width, p.Height = 16, 16

	a, _, err := Generate(testContext(t), set, nil, p)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := Generate(testContext(t), set, nil, p)
	if err != nil {
		t.Fatal(err)
	}
	a.Each(func(pt grid.Point, id tileset.TileID) {
		if got, _ := b.CellAt(pt); got != id {
			t.Fatalf("cell %v differs: %d vs %d", pt, id, got)
		}
	})
}

func TestGenerateUsesBothColors(t *testing.T) {
	set := tileset.Default()
	p := DefaultParams()
	layer, _, err := Generate(testContext(t), set, nil, p)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[tileset.TileID]bool)
	layer.Each(func(_ grid.Point, id tileset.TileID) { seen[id] = true })
	if !seen[0] || !seen[15] {
		t.Errorf("expected solid grass and solid water, got tiles %v", seen)
	}
}

func TestGenerateErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Generate(ctx, tileset.Default(), nil, DefaultParams()); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Generate error = %v", err)
	}
	if _, _, err := Generate(context.Background(), tileset.Default(), nil, Params{Width: 0, Height: 5}); err == nil {
		t.Error("zero width accepted")
	}
	if _, _, err := Generate(context.Background(), tileset.New("bare", 0), nil, DefaultParams()); err == nil {
		t.Error("colorless set accepted")
	}

	for _, size := range [][2]int{{1 << 32, 1 << 32}, {-3, -3}, {4097, 1024}} {
		p := DefaultParams()
		p.Width, p.Height = size[0], size[1]
		if _, _, err := Generate(context.Background(), tileset.Default(), nil, p); err == nil {
			t.Errorf("%dx%d map accepted", size[0], size[1])
		}
	}
}

func TestGenerateCancelledBeforeAnyChunk(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()
	p := DefaultParams()
	p.Width, p.Height = 2048, 2048

	layer, res, err := Generate(ctx, tileset.Default(), nil, p)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if layer.Len() != 0 || res.Filled != 0 {
		t.Errorf("cancelled generate filled %d cells", layer.Len())
	}
}

func TestPreferencesCoverOnlyRect(t *testing.T) {
	set := tileset.Default()
	rect := grid.Rect{X: 2, Y: 5, W: 3, H: 2}
	prefs := Preferences(set, DefaultParams(), rect)
	if prefs.Len() != 6 {
		t.Fatalf("got %d preferences, want 6", prefs.Len())
	}
	for _, p := range rect.Points() {
		c, ok := prefs.Lookup(p)
		if !ok {
			t.Fatalf("no preference at %v", p)
		}
		if c.Mask != 0 {
			t.Errorf("preference at %v requires %v", p, c.Mask)
		}
		if color := c.Desired.IndexColor(wang.Top); color < 1 || color > 2 {
			t.Errorf("preference at %v wants color %d", p, color)
		}
	}
}
