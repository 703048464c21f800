// Package tileset describes Wang tile sets: which tiles exist, the color
// signature of each tile, the colors themselves and how likely each tile
// is to be chosen when several fit.
package tileset

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"wang-painter/internal/wang"
)

// MaxColors is the largest number of colors a set can declare.
const MaxColors = wang.MaxColor

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid tile set")

// TileID identifies a tile within its set.
type TileID int

// Tile is one tile image tagged with its color signature.
type Tile struct {
	ID          TileID      `json:"id"`
	Name        string      `json:"name,omitempty"`
	WangID      wang.WangID `json:"wangid"`
	Probability float64     `json:"probability"`
}

// Color is one terrain color. Index i of a WangID refers to Colors[i-1].
type Color struct {
	Name        string  `json:"name"`
	Hex         string  `json:"color"`
	Probability float64 `json:"probability"`
}

// defaultColors follows the palette new colors get in the editor.
var defaultColors = []string{
	"#ff0000", "#00ff00", "#0000ff", "#ff7700", "#00e9ff",
	"#ff00d8", "#ffff00", "#a000ff", "#00ffa1", "#ffa8a8",
	"#b4a8ff", "#96ffa7", "#8e7848", "#5a5a5a", "#0e7a46",
}

// TileSet is an ordered collection of Wang tiles. A set is expected to be
// built once and then shared read-only between fills.
type TileSet struct {
	Name   string
	Colors []Color
	Tiles  []Tile

	byID map[TileID]int

	mu    sync.Mutex
	index *Index
}

// New returns an empty set with colorCount default colors.
func New(name string, colorCount int) *TileSet {
	s := &TileSet{Name: name, byID: make(map[TileID]int)}
	for i := 0; i < colorCount && i < MaxColors; i++ {
		s.Colors = append(s.Colors, Color{
			Name:        fmt.Sprintf("Color %d", i+1),
			Hex:         defaultColors[i],
			Probability: 1,
		})
	}
	return s
}

// ColorCount returns the number of declared colors.
func (s *TileSet) ColorCount() int {
	return len(s.Colors)
}

// ColorName returns the label of color c (1-based). Color 0 has no label.
func (s *TileSet) ColorName(c int) string {
	if c <= 0 || c > len(s.Colors) {
		return ""
	}
	return s.Colors[c-1].Name
}

// Add appends t to the set. The tile's colors must be declared and its ID
// unused.
func (s *TileSet) Add(t Tile) error {
	if s.byID == nil {
		s.byID = make(map[TileID]int)
	}
	if _, exists := s.byID[t.ID]; exists {
		return fmt.Errorf("%w: duplicate tile id %d", ErrInvalid, t.ID)
	}
	if !s.WangIDIsValid(t.WangID) {
		return fmt.Errorf("%w: tile %d %v uses colors beyond %d", ErrInvalid, t.ID, t.WangID, s.ColorCount())
	}
	if t.Probability < 0 || math.IsNaN(t.Probability) || math.IsInf(t.Probability, 0) {
		return fmt.Errorf("%w: tile %d probability %v", ErrInvalid, t.ID, t.Probability)
	}

	s.mu.Lock()
	s.byID[t.ID] = len(s.Tiles)
	s.Tiles = append(s.Tiles, t)
	s.index = nil
	s.mu.Unlock()
	return nil
}

// AddTile appends a tile with the default probability of 1.
func (s *TileSet) AddTile(id TileID, w wang.WangID) error {
	return s.Add(Tile{ID: id, WangID: w, Probability: 1})
}

// Tile returns the tile with the given id. A nil set has no tiles.
func (s *TileSet) Tile(id TileID) (Tile, bool) {
	if s == nil {
		return Tile{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return Tile{}, false
	}
	return s.Tiles[i], true
}

// WangIDOf returns the signature of tile id. Tiles outside the set have
// no signature.
func (s *TileSet) WangIDOf(id TileID) (wang.WangID, bool) {
	t, ok := s.Tile(id)
	if !ok {
		return 0, false
	}
	return t.WangID, true
}

// Probability returns the relative weight of tile id: its own probability
// multiplied by the probability of every color it shows.
func (s *TileSet) Probability(id TileID) float64 {
	t, ok := s.Tile(id)
	if !ok {
		return 0
	}
	p := t.Probability
	for i := 0; i < wang.NumSlots; i++ {
		if c := t.WangID.IndexColor(i); c > 0 && c <= len(s.Colors) {
			p *= s.Colors[c-1].Probability
		}
	}
	return p
}

// Index returns the signature index of the set, building it on first use.
func (s *TileSet) Index() *Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		s.index = NewIndex(s)
	}
	return s.index
}

// WangIDIsValid reports whether every color of w is declared in the set.
func (s *TileSet) WangIDIsValid(w wang.WangID) bool {
	for i := 0; i < wang.NumSlots; i++ {
		if w.IndexColor(i) > s.ColorCount() {
			return false
		}
	}
	return true
}

// Validate checks the whole set.
func (s *TileSet) Validate() error {
	if len(s.Colors) > MaxColors {
		return fmt.Errorf("%w: %d colors, at most %d allowed", ErrInvalid, len(s.Colors), MaxColors)
	}
	for i, c := range s.Colors {
		if c.Probability < 0 || math.IsNaN(c.Probability) {
			return fmt.Errorf("%w: color %d probability %v", ErrInvalid, i+1, c.Probability)
		}
	}
	seen := make(map[TileID]bool, len(s.Tiles))
	for _, t := range s.Tiles {
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate tile id %d", ErrInvalid, t.ID)
		}
		seen[t.ID] = true
		if !s.WangIDIsValid(t.WangID) {
			return fmt.Errorf("%w: tile %d %v uses colors beyond %d", ErrInvalid, t.ID, t.WangID, s.ColorCount())
		}
		if t.Probability < 0 || math.IsNaN(t.Probability) {
			return fmt.Errorf("%w: tile %d probability %v", ErrInvalid, t.ID, t.Probability)
		}
	}
	return nil
}

// ColorUsage reports whether color c appears on any tile edge and on any
// tile corner.
func (s *TileSet) ColorUsage(c int) (edge, corner bool) {
	if c <= 0 || c > s.ColorCount() {
		return false, false
	}
	for _, t := range s.Tiles {
		for i := 0; i < wang.NumSlots; i++ {
			if t.WangID.IndexColor(i) != c {
				continue
			}
			if wang.IsCorner(i) {
				corner = true
			} else {
				edge = true
			}
		}
	}
	return edge, corner
}

// WildcardUsed reports whether some tile matches w on every colored slot
// of w.
func (s *TileSet) WildcardUsed(w wang.WangID) bool {
	mask := w.Mask()
	for _, t := range s.Tiles {
		if t.WangID&mask == w {
			return true
		}
	}
	return false
}

// CompleteSetSize returns how many fully colored signatures exist for the
// declared colors.
func (s *TileSet) CompleteSetSize() int {
	c := s.ColorCount()
	n := 1
	for i := 0; i < wang.NumSlots; i++ {
		n *= c
	}
	return n
}

// IsComplete reports whether every fully colored signature has a tile.
func (s *TileSet) IsComplete() bool {
	if s.ColorCount() == 0 {
		return false
	}
	unique := make(map[wang.WangID]bool)
	for _, t := range s.Tiles {
		if !t.WangID.HasWildcards() {
			unique[t.WangID] = true
		}
	}
	return len(unique) == s.CompleteSetSize()
}

// TemplateWangIDAt returns the n-th fully colored signature, counting from
// all slots at color 1 up to all slots at ColorCount.
func (s *TileSet) TemplateWangIDAt(n int) wang.WangID {
	c := s.ColorCount()
	if c <= 0 {
		return 0
	}
	var w wang.WangID
	for i := 0; i < wang.NumSlots; i++ {
		w = w.WithIndexColor(i, n%c+1)
		n /= c
	}
	return w
}
