package render

import (
	"fmt"
	"strings"

	"wang-painter/internal/grid"
	"wang-painter/internal/maps"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
)

const HUDRows = 4

// Cell represents a single terminal cell with full RGB color.
type Cell struct {
	Ch     rune
	Fg, Bg RGB
	Bold   bool
}

var sentinel = Cell{Ch: '\x00', Fg: RGB{R: 255}, Bg: RGB{B: 255}, Bold: true}

// Frame is everything one viewer sees.
type Frame struct {
	Map     *maps.Map
	Set     *tileset.TileSet
	Oracle  topology.Oracle
	Invalid grid.Region // cells the last fill could not satisfy
	Cursor  grid.Point

	BrushColor int
	BrushMode  string
	Viewers    int
	Status     string
}

// Engine is a per-session double-buffer diff renderer.
type Engine struct {
	width, height int
	current       [][]Cell
	next          [][]Cell
	firstFrame    bool

	palette    Palette
	paletteFor *tileset.TileSet
}

// NewEngine creates a renderer for the given terminal dimensions.
func NewEngine(width, height int) *Engine {
	e := &Engine{
		width:      width,
		height:     height,
		firstFrame: true,
	}
	e.current = e.makeBuffer(sentinel)
	e.next = e.makeBuffer(Cell{})
	return e
}

// Resize adjusts the renderer for a new terminal size.
func (e *Engine) Resize(width, height int) {
	e.width = width
	e.height = height
	e.current = e.makeBuffer(sentinel)
	e.next = e.makeBuffer(Cell{})
	e.firstFrame = true
}

// Invalidate forces the next Render to repaint every cell.
func (e *Engine) Invalidate() {
	e.firstFrame = true
}

func (e *Engine) makeBuffer(fill Cell) [][]Cell {
	buf := make([][]Cell, e.height)
	for y := 0; y < e.height; y++ {
		buf[y] = make([]Cell, e.width)
		for x := 0; x < e.width; x++ {
			buf[y][x] = fill
		}
	}
	return buf
}

// Render produces the ANSI byte output for f, emitting only the cells
// that changed since the previous call.
func (e *Engine) Render(f Frame, termW, termH int) string {
	if termW != e.width || termH != e.height {
		e.Resize(termW, termH)
	}
	if f.Set != e.paletteFor {
		e.palette = NewPalette(f.Set)
		e.paletteFor = f.Set
		e.firstFrame = true
	}

	bgCell := Cell{Ch: ' ', Bg: RGB{R: 10, G: 10, B: 15}}
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			e.next[y][x] = bgCell
		}
	}

	if f.Map != nil {
		vp := NewViewport(f.Cursor, termW, termH, f.Map.Width, f.Map.Height, HUDRows, f.Oracle)
		for y := vp.CamY; y < vp.CamY+vp.ViewH; y++ {
			for x := vp.CamX; x < vp.CamX+vp.ViewW; x++ {
				e.drawCell(f, vp, grid.Pt(x, y))
			}
		}
		e.drawCursor(vp, f.Cursor)
	}

	e.drawHUD(f)

	var sb strings.Builder
	sb.Grow(16384)

	lastRow, lastCol := -1, -1
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			nc := e.next[y][x]
			if e.firstFrame || nc != e.current[y][x] {
				// Only emit cursor position if not consecutive
				if y != lastRow || x != lastCol {
					sb.WriteString(MoveTo(y+1, x+1))
				}
				WriteCellSGR(&sb, nc)
				lastRow = y
				lastCol = x + 1
			}
		}
	}

	if sb.Len() > 0 {
		sb.WriteString(Reset)
	}

	e.current, e.next = e.next, e.current
	e.firstFrame = false

	return sb.String()
}

// drawCell stamps the 3x3 block of one map cell.
func (e *Engine) drawCell(f Frame, vp Viewport, p grid.Point) {
	sx, sy := vp.WorldToScreen(p)
	if sx < 0 {
		return
	}

	var block Block
	ch := ' '
	fg := RGB{}
	id, placed := f.Map.TileAt(p.X, p.Y)
	w, known := f.Set.WangIDOf(id)
	switch {
	case f.Invalid.Contains(p):
		block = solid(InvalidColor)
		ch, fg = '!', RGB{R: 255, G: 235, B: 235}
	case !placed:
		block = solid(EmptyColor)
		ch, fg = '·', RGB{R: 60, G: 60, B: 75}
	case !known:
		block = solid(UnsetColor)
		ch, fg = '?', RGB{R: 20, G: 20, B: 20}
	default:
		block = e.palette.TileBlock(w)
	}

	for row := 0; row < TileRows; row++ {
		for col := 0; col < TileCols; col++ {
			e.set(sx+col, sy+row, Cell{Ch: ' ', Bg: block[row][col/2]})
		}
	}
	if ch != ' ' {
		e.set(sx+TileCols/2, sy+TileRows/2, Cell{Ch: ch, Fg: fg, Bg: block[1][1], Bold: true})
	}
}

func solid(c RGB) Block {
	return Block{{c, c, c}, {c, c, c}, {c, c, c}}
}

// drawCursor brackets the middle row of the cursor cell.
func (e *Engine) drawCursor(vp Viewport, p grid.Point) {
	sx, sy := vp.WorldToScreen(p)
	if sx < 0 {
		return
	}
	white := RGB{R: 255, G: 255, B: 255}
	row := sy + TileRows/2
	if e.inside(sx, row) {
		e.next[row][sx] = Cell{Ch: '[', Fg: white, Bg: e.next[row][sx].Bg, Bold: true}
	}
	if x := sx + TileCols - 1; e.inside(x, row) {
		e.next[row][x] = Cell{Ch: ']', Fg: white, Bg: e.next[row][x].Bg, Bold: true}
	}
}

func (e *Engine) inside(x, y int) bool {
	return x >= 0 && x < e.width && y >= 0 && y < e.height
}

func (e *Engine) set(x, y int, c Cell) {
	if e.inside(x, y) {
		e.next[y][x] = c
	}
}

// --- HUD ---

func (e *Engine) drawHUD(f Frame) {
	hudY := e.height - HUDRows
	if hudY < 0 {
		return
	}

	splitCol := e.width / 2
	bg := RGB{R: 15, G: 18, B: 30}
	dim := RGB{R: 60, G: 65, B: 85}
	text := RGB{R: 180, G: 180, B: 195}

	// Row 0: separator, thin gradient line
	for x := 0; x < e.width; x++ {
		t := uint8(60 - x*40/max(e.width, 1))
		e.next[hudY][x] = Cell{Ch: '━', Fg: RGB{R: 40 + t, G: 70 + t, B: 90 + t}, Bg: bg}
	}

	for row := 1; row < HUDRows; row++ {
		y := hudY + row
		if y >= e.height {
			break
		}
		for x := 0; x < e.width; x++ {
			e.next[y][x] = Cell{Ch: ' ', Bg: bg}
		}
		if splitCol > 0 && splitCol < e.width {
			e.next[y][splitCol] = Cell{Ch: '│', Fg: RGB{R: 50, G: 60, B: 80}, Bg: bg}
		}
	}

	// --- Left column ---
	row1 := hudY + 1
	mapName, setName, size := "no map", "no tile set", ""
	if f.Map != nil {
		mapName = f.Map.Name
		size = fmt.Sprintf("%dx%d", f.Map.Width, f.Map.Height)
	}
	if f.Set != nil {
		setName = f.Set.Name
	}
	col := e.writeText(row1, 1, splitCol, mapName, RGB{R: 230, G: 230, B: 240}, bg, true)
	col = e.writeText(row1, col, splitCol, "  │  ", dim, bg, false)
	col = e.writeText(row1, col, splitCol, setName, text, bg, false)
	if size != "" {
		col = e.writeText(row1, col, splitCol, "  │  ", dim, bg, false)
		col = e.writeText(row1, col, splitCol, size, text, bg, false)
	}
	if f.Viewers > 0 {
		col = e.writeText(row1, col, splitCol, "  │  ", dim, bg, false)
		e.writeText(row1, col, splitCol, fmt.Sprintf("%d Online", f.Viewers), text, bg, false)
	}

	row2 := hudY + 2
	col = e.writeText(row2, 1, splitCol, "Brush ", text, bg, true)
	if f.BrushColor > 0 && f.Set != nil {
		swatch := e.palette.Color(f.BrushColor)
		col = e.writeText(row2, col, splitCol, "  ", swatch, swatch, false)
		col = e.writeText(row2, col+1, splitCol, f.Set.ColorName(f.BrushColor), swatch.Lighten(), bg, false)
	} else {
		col = e.writeText(row2, col, splitCol, "erase", text, bg, false)
	}
	if f.BrushMode != "" {
		col = e.writeText(row2, col, splitCol, "  │  ", dim, bg, false)
		e.writeText(row2, col, splitCol, f.BrushMode, text, bg, false)
	}

	row3 := hudY + 3
	e.writeText(row3, 1, splitCol, "←↑↓→/WASD Move  1-9 Paint  0 Erase  R Regen  Q Quit", RGB{R: 130, G: 130, B: 145}, bg, false)

	// --- Right column ---
	rightStart := splitCol + 2
	cursor := fmt.Sprintf("Cursor %v", f.Cursor)
	if f.Map != nil {
		if id, ok := f.Map.TileAt(f.Cursor.X, f.Cursor.Y); ok {
			if w, ok := f.Set.WangIDOf(id); ok {
				cursor += fmt.Sprintf("  tile %d  %v", id, w)
			}
		}
	}
	e.writeText(row1, rightStart, e.width, cursor, text, bg, false)

	if f.Map != nil {
		total := f.Map.Width * f.Map.Height
		barWidth := max((e.width-rightStart)-9-2*len(fmt.Sprint(total))-1, 4)
		e.drawStatBar(row2, rightStart, "Placed ", f.Map.Layer.Len(), total, barWidth,
			RGB{R: 100, G: 220, B: 220}, RGB{R: 60, G: 200, B: 180}, bg)
	}

	status := f.Status
	statusFg := text
	if n := f.Invalid.Len(); n > 0 {
		status = fmt.Sprintf("%d unsatisfiable  %s", n, status)
		statusFg = RGB{R: 255, G: 110, B: 90}
	}
	e.writeText(row3, rightStart, e.width, status, statusFg, bg, false)
}

// drawStatBar draws a labeled stat bar with fill. Returns columns consumed.
func (e *Engine) drawStatBar(row, col int, label string, current, maximum, barWidth int, labelFg, fill, bg RGB) int {
	startCol := col

	col = e.writeText(row, col, e.width, label, labelFg, bg, true)
	col++ // space

	filled := 0
	if maximum > 0 {
		filled = barWidth * current / maximum
	}
	filled = min(max(filled, 0), barWidth)
	for i := 0; i < barWidth; i++ {
		x := col + i
		if x >= e.width || row < 0 || row >= e.height {
			break
		}
		if i < filled {
			e.next[row][x] = Cell{Ch: '█', Fg: fill, Bg: bg}
		} else {
			e.next[row][x] = Cell{Ch: '░', Fg: RGB{R: 45, G: 45, B: 55}, Bg: bg}
		}
	}
	col += barWidth
	col++ // space

	col = e.writeText(row, col, e.width, fmt.Sprintf("%d/%d", current, maximum), RGB{R: 180, G: 180, B: 195}, bg, false)
	return col - startCol
}

// writeText writes colored text into a bounded region [col, maxCol). Returns the next column position.
func (e *Engine) writeText(row, col, maxCol int, text string, fg, bg RGB, bold bool) int {
	for _, r := range text {
		if col >= maxCol || col >= e.width {
			break
		}
		if row >= 0 && row < e.height && col >= 0 {
			e.next[row][col] = Cell{Ch: r, Fg: fg, Bg: bg, Bold: bold}
		}
		col++
	}
	return col
}
