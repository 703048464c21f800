package render

import (
	"wang-painter/internal/tileset"
	"wang-painter/internal/wang"
)

// Fixed colors for cells that carry no tile color.
var (
	EmptyColor   = RGB{R: 22, G: 22, B: 30}
	InvalidColor = RGB{R: 200, G: 40, B: 40}
	UnsetColor   = RGB{R: 90, G: 90, B: 100}
)

// Palette maps Wang colors of one tile set to terminal colors. Index 0
// is the color drawn for unset slots.
type Palette []RGB

// NewPalette builds the palette of set. Colors with a malformed hex value
// are drawn grey.
func NewPalette(set *tileset.TileSet) Palette {
	p := Palette{UnsetColor}
	if set == nil {
		return p
	}
	for _, c := range set.Colors {
		rgb, err := ParseHex(c.Hex)
		if err != nil {
			rgb = UnsetColor
		}
		p = append(p, rgb)
	}
	return p
}

// Color returns the terminal color of Wang color c.
func (p Palette) Color(c int) RGB {
	if c <= 0 || c >= len(p) {
		return p[0]
	}
	return p[c]
}

// Block is a tile drawn as a 3x3 grid of colors, indexed [y][x] the way
// wang.SlotByGrid lays slots out around the center.
type Block [3][3]RGB

// TileBlock draws signature w. A slot without a color borrows from the
// slots beside it, so corner-only tiles get solid edges and edge-only
// tiles get solid corners. The center takes the most frequent slot color.
func (p Palette) TileBlock(w wang.WangID) Block {
	var b Block
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			slot := wang.SlotByGrid(x, y)
			if slot == wang.NumSlots {
				b[y][x] = p.Color(majority(w))
				continue
			}
			b[y][x] = p.slotColor(w, slot)
		}
	}
	return b
}

// slotColor is the color of one slot, falling back to its two
// neighbouring slots when it has none.
func (p Palette) slotColor(w wang.WangID, slot int) RGB {
	if c := w.IndexColor(slot); c != 0 {
		return p.Color(c)
	}
	var around []RGB
	for _, s := range []int{wang.PreviousSlot(slot), wang.NextSlot(slot)} {
		if c := w.IndexColor(s); c != 0 {
			around = append(around, p.Color(c))
		}
	}
	if len(around) == 0 {
		return p.Color(majority(w))
	}
	return mix(around...)
}

// majority returns the most used color of w, the lowest one on ties, or 0
// for an empty signature.
func majority(w wang.WangID) int {
	var counts [wang.MaxColor + 1]int
	for i := 0; i < wang.NumSlots; i++ {
		counts[w.IndexColor(i)]++
	}
	best := 0
	for c := 1; c <= wang.MaxColor; c++ {
		if counts[c] > counts[best] || best == 0 && counts[c] > 0 {
			best = c
		}
	}
	return best
}
