package tileset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wang-painter/internal/wang"
)

// jsonTileSet is the on-disk JSON format.
type jsonTileSet struct {
	Name   string      `json:"name"`
	Colors []jsonColor `json:"colors"`
	Tiles  []jsonTile  `json:"tiles"`
}

type jsonColor struct {
	Name        string   `json:"name"`
	Color       string   `json:"color,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
}

type jsonTile struct {
	ID          int         `json:"id"`
	Name        string      `json:"name,omitempty"`
	WangID      wang.WangID `json:"wangid"`
	Probability *float64    `json:"probability,omitempty"`
}

func probabilityOr1(p *float64) float64 {
	if p == nil {
		return 1
	}
	return *p
}

// Parse decodes a tile set from its JSON form.
func Parse(data []byte) (*TileSet, error) {
	var js jsonTileSet
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, fmt.Errorf("parse tile set JSON: %w", err)
	}
	if js.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if len(js.Colors) > MaxColors {
		return nil, fmt.Errorf("%w: %d colors, at most %d allowed", ErrInvalid, len(js.Colors), MaxColors)
	}

	s := New(js.Name, len(js.Colors))
	for i, jc := range js.Colors {
		if jc.Name != "" {
			s.Colors[i].Name = jc.Name
		}
		if jc.Color != "" {
			s.Colors[i].Hex = jc.Color
		}
		s.Colors[i].Probability = probabilityOr1(jc.Probability)
	}
	for _, jt := range js.Tiles {
		t := Tile{
			ID:          TileID(jt.ID),
			Name:        jt.Name,
			WangID:      jt.WangID,
			Probability: probabilityOr1(jt.Probability),
		}
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads a JSON tile set file from disk.
func Load(path string) (*TileSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tile set file: %w", err)
	}
	return Parse(data)
}

// Marshal encodes s in the same JSON form Parse reads.
func Marshal(s *TileSet) ([]byte, error) {
	js := jsonTileSet{Name: s.Name}
	for _, c := range s.Colors {
		p := c.Probability
		js.Colors = append(js.Colors, jsonColor{Name: c.Name, Color: c.Hex, Probability: &p})
	}
	for _, t := range s.Tiles {
		p := t.Probability
		js.Tiles = append(js.Tiles, jsonTile{ID: int(t.ID), Name: t.Name, WangID: t.WangID, Probability: &p})
	}
	return json.MarshalIndent(js, "", "  ")
}

// LoadDir scans a directory for *.json files, loads each as a tile set,
// and returns them indexed by Name.
func LoadDir(dir string) (map[string]*TileSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tile set directory: %w", err)
	}

	sets := make(map[string]*TileSet)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		s, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
		if _, exists := sets[s.Name]; exists {
			return nil, fmt.Errorf("duplicate tile set name %q in %s", s.Name, entry.Name())
		}
		sets[s.Name] = s
	}
	return sets, nil
}

// Default returns a complete two color corner set (grass and water) used
// when no tile set files are available. Tile ids count the corner colors
// in binary, top-right corner first.
func Default() *TileSet {
	s := New("Grass and Water", 2)
	s.Colors[0].Name, s.Colors[0].Hex = "grass", "#3c8c32"
	s.Colors[1].Name, s.Colors[1].Hex = "water", "#2850b4"

	for n := 0; n < 16; n++ {
		var w wang.WangID
		for c := 0; c < 4; c++ {
			w = w.WithCornerColor(c, (n>>c)&1+1)
		}
		if err := s.AddTile(TileID(n), w); err != nil {
			panic(err)
		}
	}
	return s
}
