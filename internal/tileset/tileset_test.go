package tileset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"wang-painter/internal/wang"
)

func mustParse(t *testing.T, s string) wang.WangID {
	t.Helper()
	w, err := wang.ParseWangID(s)
	if err != nil {
		t.Fatalf("ParseWangID(%q): %v", s, err)
	}
	return w
}

func TestAddRejectsBadTiles(t *testing.T) {
	tests := []struct {
		name string
		tile Tile
	}{
		{"color out of range", Tile{ID: 1, WangID: wang.WangID(0).WithIndexColor(wang.Top, 3), Probability: 1}},
		{"negative probability", Tile{ID: 2, Probability: -1}},
		{"nan probability", Tile{ID: 3, Probability: math.NaN()}},
		{"duplicate id", Tile{ID: 0, Probability: 1}},
	}

	s := New("test", 2)
	if err := s.AddTile(0, 0); err != nil {
		t.Fatalf("AddTile: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(tt.tile)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Add(%+v) error = %v, want ErrInvalid", tt.tile, err)
			}
		})
	}
	if len(s.Tiles) != 1 {
		t.Errorf("set has %d tiles after rejected adds, want 1", len(s.Tiles))
	}
}

func TestProbabilityIncludesColors(t *testing.T) {
	s := New("test", 2)
	s.Colors[0].Probability = 0.5
	s.Colors[1].Probability = 2
	w := mustParse(t, "1,0,2,0,1,0,0,0")
	if err := s.Add(Tile{ID: 7, WangID: w, Probability: 3}); err != nil {
		t.Fatal(err)
	}

	// 3 * 0.5 * 2 * 0.5
	if got := s.Probability(7); got != 1.5 {
		t.Errorf("Probability = %v, want 1.5", got)
	}
	if got := s.Probability(99); got != 0 {
		t.Errorf("Probability of unknown tile = %v, want 0", got)
	}
}

func TestColorUsage(t *testing.T) {
	s := New("test", 3)
	_ = s.AddTile(0, mustParse(t, "1,0,1,0,1,0,1,0"))
	_ = s.AddTile(1, mustParse(t, "0,2,0,2,0,2,0,2"))

	tests := []struct {
		color        int
		edge, corner bool
	}{
		{1, true, false},
		{2, false, true},
		{3, false, false},
		{0, false, false},
	}
	for _, tt := range tests {
		edge, corner := s.ColorUsage(tt.color)
		if edge != tt.edge || corner != tt.corner {
			t.Errorf("ColorUsage(%d) = %v, %v, want %v, %v", tt.color, edge, corner, tt.edge, tt.corner)
		}
	}
}

func TestDefaultIsCompleteCornerSet(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(s.Tiles) != 16 {
		t.Fatalf("Default has %d tiles, want 16", len(s.Tiles))
	}
	seen := make(map[wang.WangID]bool)
	for _, tile := range s.Tiles {
		for e := 0; e < 4; e++ {
			if tile.WangID.EdgeColor(e) != 0 {
				t.Errorf("tile %d has edge color on edge %d", tile.ID, e)
			}
		}
		seen[tile.WangID] = true
	}
	if len(seen) != 16 {
		t.Errorf("Default has %d distinct signatures, want 16", len(seen))
	}
	// Edges are unset so the set is not complete over all 8 slots.
	if s.IsComplete() {
		t.Error("corner-only set reported complete")
	}
}

func TestIsComplete(t *testing.T) {
	s := New("one", 1)
	if s.CompleteSetSize() != 1 {
		t.Fatalf("CompleteSetSize = %d, want 1", s.CompleteSetSize())
	}
	if s.IsComplete() {
		t.Error("empty set reported complete")
	}
	_ = s.AddTile(0, s.TemplateWangIDAt(0))
	if !s.IsComplete() {
		t.Error("single color set with its only template not complete")
	}
}

func TestTemplateWangIDAt(t *testing.T) {
	s := New("two", 2)
	if got, want := s.TemplateWangIDAt(0), mustParse(t, "1,1,1,1,1,1,1,1"); got != want {
		t.Errorf("TemplateWangIDAt(0) = %v, want %v", got, want)
	}
	if got, want := s.TemplateWangIDAt(1), mustParse(t, "2,1,1,1,1,1,1,1"); got != want {
		t.Errorf("TemplateWangIDAt(1) = %v, want %v", got, want)
	}
	if got, want := s.TemplateWangIDAt(s.CompleteSetSize()-1), mustParse(t, "2,2,2,2,2,2,2,2"); got != want {
		t.Errorf("last template = %v, want %v", got, want)
	}
}

func TestParseDefaultsProbabilities(t *testing.T) {
	data := []byte(`{
		"name": "Roads",
		"colors": [{"name": "dirt"}, {"name": "road", "color": "#808080", "probability": 0.25}],
		"tiles": [
			{"id": 0, "wangid": "1,0,1,0,1,0,1,0"},
			{"id": 1, "wangid": "2,0,1,0,2,0,1,0", "probability": 0}
		]
	}`)
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Name != "Roads" || s.ColorCount() != 2 {
		t.Fatalf("got %q with %d colors", s.Name, s.ColorCount())
	}
	if s.Colors[0].Probability != 1 || s.Colors[1].Probability != 0.25 {
		t.Errorf("color probabilities = %v, %v", s.Colors[0].Probability, s.Colors[1].Probability)
	}
	if s.Colors[1].Hex != "#808080" || s.ColorName(1) != "dirt" {
		t.Errorf("colors = %+v", s.Colors)
	}
	tile, ok := s.Tile(1)
	if !ok || tile.Probability != 0 {
		t.Errorf("explicit zero probability lost: %+v", tile)
	}
	tile, _ = s.Tile(0)
	if tile.Probability != 1 {
		t.Errorf("default tile probability = %v, want 1", tile.Probability)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{`},
		{"missing name", `{"colors": [], "tiles": []}`},
		{"bad wangid", `{"name": "x", "colors": [{}], "tiles": [{"id": 0, "wangid": "1,2"}]}`},
		{"undeclared color", `{"name": "x", "colors": [{}], "tiles": [{"id": 0, "wangid": "2,0,0,0,0,0,0,0"}]}`},
		{"duplicate id", `{"name": "x", "colors": [{}], "tiles": [{"id": 0, "wangid": "1,0,0,0,0,0,0,0"}, {"id": 0, "wangid": "0,0,0,0,0,0,0,0"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	s := Default()
	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if back.Name != s.Name || len(back.Tiles) != len(s.Tiles) {
		t.Fatalf("round trip lost data: %q %d tiles", back.Name, len(back.Tiles))
	}
	for i := range s.Tiles {
		if back.Tiles[i] != s.Tiles[i] {
			t.Errorf("tile %d = %+v, want %+v", i, back.Tiles[i], s.Tiles[i])
		}
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.json", `{"name": "alpha", "colors": [{}], "tiles": [{"id": 0, "wangid": "1,1,1,1,1,1,1,1"}]}`)
	write("b.json", `{"name": "beta", "colors": [{}, {}], "tiles": []}`)
	write("notes.txt", "ignored")

	sets, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(sets) != 2 || sets["alpha"] == nil || sets["beta"] == nil {
		t.Fatalf("LoadDir = %v", sets)
	}

	write("c.json", `{"name": "alpha", "colors": [], "tiles": []}`)
	if _, err := LoadDir(dir); err == nil {
		t.Error("duplicate set name accepted")
	}
}
