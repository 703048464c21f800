package render

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ESC   = "\x1b"
	CSI   = ESC + "["
	Reset = CSI + "0m"
)

// MoveTo positions the cursor at row, col (1-based).
func MoveTo(row, col int) string {
	return fmt.Sprintf("%s%d;%dH", CSI, row, col)
}

// ClearScreen clears the entire screen.
func ClearScreen() string {
	return CSI + "2J"
}

// HideCursor hides the terminal cursor.
func HideCursor() string {
	return CSI + "?25l"
}

// ShowCursor shows the terminal cursor.
func ShowCursor() string {
	return CSI + "?25h"
}

// EnableAltScreen switches to the alternate screen buffer.
func EnableAltScreen() string {
	return CSI + "?1049h"
}

// DisableAltScreen switches back from the alternate screen buffer.
func DisableAltScreen() string {
	return CSI + "?1049l"
}

// WriteCellSGR writes a single cell's full SGR + character to the builder.
// Uses combined SGR to avoid state leakage between cells.
func WriteCellSGR(sb *strings.Builder, c Cell) {
	if c.Bold {
		sb.WriteString("\x1b[0;1;38;2;")
	} else {
		sb.WriteString("\x1b[0;38;2;")
	}
	sb.WriteString(strconv.Itoa(int(c.Fg.R)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.Fg.G)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.Fg.B)))
	sb.WriteString(";48;2;")
	sb.WriteString(strconv.Itoa(int(c.Bg.R)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.Bg.G)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.Bg.B)))
	sb.WriteByte('m')
	sb.WriteRune(c.Ch)
}

// RGB is a 24-bit terminal color.
type RGB struct {
	R, G, B uint8
}

// ParseHex reads a "#rrggbb" or "rrggbb" color as written in tile set
// files.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Lighten moves c a third of the way towards white.
func (c RGB) Lighten() RGB {
	return RGB{R: c.R + (255-c.R)/3, G: c.G + (255-c.G)/3, B: c.B + (255-c.B)/3}
}

// mix averages colors channel by channel.
func mix(cs ...RGB) RGB {
	if len(cs) == 0 {
		return RGB{}
	}
	var r, g, b int
	for _, c := range cs {
		r += int(c.R)
		g += int(c.G)
		b += int(c.B)
	}
	n := len(cs)
	return RGB{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n)}
}
