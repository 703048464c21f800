package wang

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot indexes around a cell, clockwise from the top edge:
//
//	7|0|1
//	6|.|2
//	5|4|3
const (
	Top = iota
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
	Left
	TopLeft
	NumSlots
)

// MaxColor is the largest color a slot can hold.
const MaxColor = 0xf

// FullMask constrains every slot.
const FullMask WangID = 0xffffffff

// WangID packs one 4-bit color per slot. Color 0 means "no color".
// Slot i lives at bits 4i..4i+3.
type WangID uint32

func checkSlot(i int) {
	if i < 0 || i >= NumSlots {
		panic(fmt.Sprintf("wang: slot index %d out of range", i))
	}
}

// IndexColor returns the color at slot i (0-7).
func (w WangID) IndexColor(i int) int {
	checkSlot(i)
	return int(w>>(uint(i)*4)) & MaxColor
}

// WithIndexColor returns a copy of w with slot i set to color.
func (w WangID) WithIndexColor(i, color int) WangID {
	checkSlot(i)
	if color < 0 || color > MaxColor {
		panic(fmt.Sprintf("wang: color %d out of range", color))
	}
	shift := uint(i) * 4
	w &^= MaxColor << shift
	return w | WangID(color)<<shift
}

// EdgeColor returns the color of edge e, 0 being the top edge.
//
//	 |0|
//	3|.|1
//	 |2|
func (w WangID) EdgeColor(e int) int {
	if e < 0 || e >= 4 {
		panic(fmt.Sprintf("wang: edge index %d out of range", e))
	}
	return w.IndexColor(e * 2)
}

// CornerColor returns the color of corner c, 0 being the top right corner.
//
//	3| |0
//	 |.|
//	2| |1
func (w WangID) CornerColor(c int) int {
	if c < 0 || c >= 4 {
		panic(fmt.Sprintf("wang: corner index %d out of range", c))
	}
	return w.IndexColor(c*2 + 1)
}

// WithEdgeColor returns a copy of w with edge e set to color.
func (w WangID) WithEdgeColor(e, color int) WangID {
	if e < 0 || e >= 4 {
		panic(fmt.Sprintf("wang: edge index %d out of range", e))
	}
	return w.WithIndexColor(e*2, color)
}

// WithCornerColor returns a copy of w with corner c set to color.
func (w WangID) WithCornerColor(c, color int) WangID {
	if c < 0 || c >= 4 {
		panic(fmt.Sprintf("wang: corner index %d out of range", c))
	}
	return w.WithIndexColor(c*2+1, color)
}

// Mask returns a WangID that is 0xf for every colored slot and 0 elsewhere.
func (w WangID) Mask() WangID {
	var mask WangID
	for i := 0; i < NumSlots; i++ {
		if w.IndexColor(i) != 0 {
			mask |= MaxColor << (uint(i) * 4)
		}
	}
	return mask
}

// HasWildcards reports whether one or more slots have no color.
func (w WangID) HasWildcards() bool {
	for i := 0; i < NumSlots; i++ {
		if w.IndexColor(i) == 0 {
			return true
		}
	}
	return false
}

// Rotate turns the id clockwise by 90 degrees per rotation, so the top
// edge becomes the right edge. Negative values rotate counter-clockwise.
func (w WangID) Rotate(rotations int) WangID {
	rotations %= 4
	if rotations < 0 {
		rotations += 4
	}
	if rotations == 0 {
		return w
	}
	shift := uint(rotations) * 8
	return w<<shift | w>>(32-shift)
}

// FlipHorizontally mirrors the id around the vertical axis.
func (w WangID) FlipHorizontally() WangID {
	flipped := w.WithIndexColor(Right, w.IndexColor(Left)).
		WithIndexColor(Left, w.IndexColor(Right))
	for c := 0; c < 4; c++ {
		flipped = flipped.WithCornerColor(c, w.CornerColor(3-c))
	}
	return flipped
}

// FlipVertically mirrors the id around the horizontal axis.
func (w WangID) FlipVertically() WangID {
	return w.FlipHorizontally().Rotate(2)
}

// String formats the id as WangID(top,topright,...,topleft).
func (w WangID) String() string {
	var sb strings.Builder
	sb.WriteString("WangID(")
	for i := 0; i < NumSlots; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(w.IndexColor(i)))
	}
	sb.WriteByte(')')
	return sb.String()
}

// ParseWangID reads the comma separated form used in tile set files,
// e.g. "1,0,1,0,2,0,2,0", one color per slot starting at the top edge.
func ParseWangID(s string) (WangID, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "WangID("), ")")
	parts := strings.Split(s, ",")
	if len(parts) != NumSlots {
		return 0, fmt.Errorf("wang id %q: want %d colors, got %d", s, NumSlots, len(parts))
	}
	var w WangID
	for i, p := range parts {
		c, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("wang id %q slot %d: %w", s, i, err)
		}
		if c < 0 || c > MaxColor {
			return 0, fmt.Errorf("wang id %q slot %d: color %d out of range", s, i, c)
		}
		w = w.WithIndexColor(i, c)
	}
	return w, nil
}

// MarshalText implements encoding.TextMarshaler using the ParseWangID form.
func (w WangID) MarshalText() ([]byte, error) {
	s := w.String()
	return []byte(s[len("WangID(") : len(s)-1]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WangID) UnmarshalText(text []byte) error {
	id, err := ParseWangID(string(text))
	if err != nil {
		return err
	}
	*w = id
	return nil
}

// OppositeSlot returns the slot facing i on the neighbor that shares it.
func OppositeSlot(i int) int {
	checkSlot(i)
	return (i + 4) % NumSlots
}

// NextSlot returns the slot clockwise from i.
func NextSlot(i int) int {
	checkSlot(i)
	return (i + 1) % NumSlots
}

// PreviousSlot returns the slot counter-clockwise from i.
func PreviousSlot(i int) int {
	checkSlot(i)
	return (i + NumSlots - 1) % NumSlots
}

// IsCorner reports whether slot i is a corner rather than an edge.
func IsCorner(i int) bool {
	checkSlot(i)
	return i&1 == 1
}

// SlotByGrid maps a position in a 3x3 grid around a cell to its slot.
// The center (1,1) returns NumSlots.
//
//	  x 0 1 2
//	y
//	0   7|0|1
//	1   6|.|2
//	2   5|4|3
func SlotByGrid(x, y int) int {
	if x < 0 || x > 2 || y < 0 || y > 2 {
		panic(fmt.Sprintf("wang: grid position (%d,%d) out of range", x, y))
	}
	slots := [3][3]int{
		{TopLeft, Top, TopRight},
		{Left, NumSlots, Right},
		{BottomLeft, Bottom, BottomRight},
	}
	return slots[y][x]
}

// FromSurrounding builds the id that fits between the given neighbor ids,
// indexed by slot. Edges come from the neighbor across each edge. Corners
// come from the diagonal neighbor, falling back to the two edge neighbors
// that touch the same corner.
func FromSurrounding(neighbors [NumSlots]WangID) WangID {
	var w WangID
	for e := 0; e < 4; e++ {
		w = w.WithEdgeColor(e, neighbors[e*2].EdgeColor((e+2)%4))
	}
	for c := 0; c < 4; c++ {
		color := neighbors[c*2+1].CornerColor((c + 2) % 4)
		if color == 0 {
			color = neighbors[c*2].CornerColor((c + 1) % 4)
		}
		if color == 0 {
			color = neighbors[(c*2+2)%NumSlots].CornerColor((c + 3) % 4)
		}
		w = w.WithCornerColor(c, color)
	}
	return w
}
