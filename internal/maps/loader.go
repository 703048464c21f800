// Package maps reads and writes painted Wang maps: a rectangle of tile ids
// plus the name of the tile set and the layout they belong to. Files
// ending in .zst are zstd compressed JSON.
package maps

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"wang-painter/internal/grid"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
)

// Empty is the tile id written for cells without a tile.
const Empty = -1

// MaxCells bounds the size of a decoded map.
const MaxCells = 1 << 22

// Map is one painted map. Cells run from (0,0) to (Width-1,Height-1).
type Map struct {
	Name    string
	Width   int
	Height  int
	TileSet string
	Layout  topology.Descriptor
	Spawn   grid.Point // where viewers start
	Layer   *grid.Layer
}

// jsonMap is the on-disk JSON format.
type jsonMap struct {
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	TileSet string `json:"tileset"`
	topology.Descriptor
	Spawn grid.Point `json:"spawn"`
	Tiles [][]int    `json:"tiles"`
}

// New returns an empty map.
func New(name string, width, height int, set string, layout topology.Descriptor) *Map {
	return &Map{
		Name:    name,
		Width:   width,
		Height:  height,
		TileSet: set,
		Layout:  layout,
		Spawn:   grid.Pt(width/2, height/2),
		Layer:   grid.NewLayer(),
	}
}

// Bounds returns the rectangle of the map.
func (m *Map) Bounds() grid.Rect {
	return grid.Rect{X: 0, Y: 0, W: m.Width, H: m.Height}
}

// Oracle returns the neighbor oracle of the map's layout.
func (m *Map) Oracle() (topology.Oracle, error) {
	return topology.New(m.Layout)
}

// TileAt returns the tile at x,y. Cells outside the map are empty.
func (m *Map) TileAt(x, y int) (tileset.TileID, bool) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return 0, false
	}
	return m.Layer.CellAt(grid.Pt(x, y))
}

// Validate checks that every placed tile exists in set.
func (m *Map) Validate(set *tileset.TileSet) error {
	if m.TileSet != "" && m.TileSet != set.Name {
		return fmt.Errorf("map %q uses tile set %q, not %q", m.Name, m.TileSet, set.Name)
	}
	var err error
	m.Layer.Each(func(p grid.Point, id tileset.TileID) {
		if _, ok := set.Tile(id); !ok && err == nil {
			err = fmt.Errorf("map %q cell %v: tile %d not in set %q", m.Name, p, id, set.Name)
		}
	})
	return err
}

// Decode reads a map in JSON form.
func Decode(r io.Reader) (*Map, error) {
	var jm jsonMap
	if err := json.NewDecoder(r).Decode(&jm); err != nil {
		return nil, fmt.Errorf("parse map JSON: %w", err)
	}
	if _, err := topology.New(jm.Descriptor); err != nil {
		return nil, fmt.Errorf("map %q: %w", jm.Name, err)
	}

	// Validate tile dimensions
	if jm.Width <= 0 || jm.Height <= 0 || jm.Width > MaxCells/jm.Height {
		return nil, fmt.Errorf("map %q: invalid size %dx%d", jm.Name, jm.Width, jm.Height)
	}
	if len(jm.Tiles) != jm.Height {
		return nil, fmt.Errorf("tile rows %d != declared height %d", len(jm.Tiles), jm.Height)
	}
	layer := grid.NewLayer()
	for y, row := range jm.Tiles {
		if len(row) != jm.Width {
			return nil, fmt.Errorf("row %d has %d tiles, expected %d", y, len(row), jm.Width)
		}
		for x, id := range row {
			switch {
			case id == Empty:
			case id < 0:
				return nil, fmt.Errorf("cell (%d,%d) has tile id %d", x, y, id)
			default:
				layer.SetCell(grid.Pt(x, y), tileset.TileID(id))
			}
		}
	}

	return &Map{
		Name:    jm.Name,
		Width:   jm.Width,
		Height:  jm.Height,
		TileSet: jm.TileSet,
		Layout:  jm.Descriptor,
		Spawn:   jm.Spawn,
		Layer:   layer,
	}, nil
}

// Encode writes m in JSON form. Cells outside the map bounds are dropped.
func (m *Map) Encode(w io.Writer) error {
	jm := jsonMap{
		Name:       m.Name,
		Width:      m.Width,
		Height:     m.Height,
		TileSet:    m.TileSet,
		Descriptor: m.Layout,
		Spawn:      m.Spawn,
		Tiles:      make([][]int, m.Height),
	}
	for y := range jm.Tiles {
		row := make([]int, m.Width)
		for x := range row {
			row[x] = Empty
			if id, ok := m.Layer.CellAt(grid.Pt(x, y)); ok {
				row[x] = int(id)
			}
		}
		jm.Tiles[y] = row
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jm)
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// LoadMap reads a map file from disk.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}
	var r io.Reader = bytes.NewReader(data)
	if compressed(path) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	return Decode(r)
}

// SaveMap writes m to path, compressing it when path ends in .zst.
func SaveMap(path string, m *Map) error {
	var buf bytes.Buffer
	if compressed(path) {
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("open zstd stream: %w", err)
		}
		if err := m.Encode(enc); err != nil {
			enc.Close()
			return err
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("close zstd stream: %w", err)
		}
	} else if err := m.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write map file: %w", err)
	}
	return nil
}

// LoadMaps scans a directory for *.json and *.json.zst files, loads each
// as a Map, and returns them indexed by Name.
func LoadMaps(dir string) (map[string]*Map, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read maps directory: %w", err)
	}

	allMaps := make(map[string]*Map)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.zst")) {
			continue
		}
		m, err := LoadMap(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		if _, exists := allMaps[m.Name]; exists {
			return nil, fmt.Errorf("duplicate map name %q in %s", m.Name, name)
		}
		allMaps[m.Name] = m
	}
	return allMaps, nil
}
