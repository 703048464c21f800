package main

import (
	"strings"
	"testing"

	"wang-painter/internal/grid"
	"wang-painter/internal/maps"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"64x32", 64, 32, false},
		{"1x1", 1, 1, false},
		{"64", 0, 0, true},
		{"0x5", 0, 0, true},
		{"5x-1", 0, 0, true},
		{"axb", 0, 0, true},
		{"100000x100000", 0, 0, true},
	}
	for _, tt := range tests {
		w, h, err := parseSize(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSize(%q) = %d, %d, want error", tt.in, w, h)
			}
			continue
		}
		if err != nil || w != tt.w || h != tt.h {
			t.Errorf("parseSize(%q) = %d, %d, %v, want %d, %d", tt.in, w, h, err, tt.w, tt.h)
		}
	}
}

func TestAnsiMap(t *testing.T) {
	set := tileset.Default()
	m := maps.New("viz", 2, 1, set.Name, topology.Descriptor{})
	m.Layer.SetCell(grid.Pt(0, 0), 15)

	out := ansiMap(m, set, grid.NewRegion(grid.Pt(0, 0)))
	if got := strings.Count(out, "\n"); got != 3 {
		t.Errorf("got %d lines, want 3", got)
	}
	if got := strings.Count(out, "!"); got != 1 {
		t.Errorf("got %d marks, want 1", got)
	}

	plain := ansiMap(m, set, grid.NewRegion())
	if strings.Contains(plain, "!") {
		t.Error("unmarked map has a mark")
	}
}
