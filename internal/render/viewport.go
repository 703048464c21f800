package render

import (
	"wang-painter/internal/grid"
	"wang-painter/internal/topology"
)

const (
	// TileCols is how many screen columns each map cell occupies: three
	// slot columns of two characters, which looks roughly square.
	TileCols = 6

	// TileRows is how many screen rows each map cell occupies.
	TileRows = 3
)

// Viewport computes camera coordinates for a viewer's cursor.
type Viewport struct {
	CamX, CamY   int // top-left map cell
	ViewW, ViewH int // viewport size in cells

	stagger *topology.Stagger
}

// NewViewport calculates the camera position centered on the focus cell,
// clamped to map edges. hudRows reserves space for the HUD at the bottom.
// Staggered layouts lose one cell so shifted rows still fit.
func NewViewport(focus grid.Point, termW, termH, mapW, mapH, hudRows int, oracle topology.Oracle) Viewport {
	viewW := termW / TileCols
	viewH := (termH - hudRows) / TileRows

	var stagger *topology.Stagger
	if s, ok := oracle.(topology.Stagger); ok {
		stagger = &s
		if s.Axis == topology.StaggerX {
			viewH--
		} else {
			viewW--
		}
	}
	viewW = max(viewW, 0)
	viewH = max(viewH, 0)

	camX := clampCam(focus.X-viewW/2, viewW, mapW)
	camY := clampCam(focus.Y-viewH/2, viewH, mapH)

	return Viewport{
		CamX:    camX,
		CamY:    camY,
		ViewW:   viewW,
		ViewH:   viewH,
		stagger: stagger,
	}
}

func clampCam(cam, view, size int) int {
	if cam+view > size {
		cam = size - view
	}
	if cam < 0 {
		cam = 0
	}
	return cam
}

// Visible reports whether map cell p is inside the viewport.
func (v Viewport) Visible(p grid.Point) bool {
	return p.X >= v.CamX && p.X < v.CamX+v.ViewW && p.Y >= v.CamY && p.Y < v.CamY+v.ViewH
}

// WorldToScreen converts a map cell to the 0-based screen column and row
// of its top-left character. Returns -1,-1 if the cell is outside the
// viewport.
func (v Viewport) WorldToScreen(p grid.Point) (int, int) {
	if !v.Visible(p) {
		return -1, -1
	}
	sx := (p.X - v.CamX) * TileCols
	sy := (p.Y - v.CamY) * TileRows
	if v.stagger != nil {
		if v.stagger.Axis == topology.StaggerX && v.stagger.Shifted(p.X) {
			sy += TileRows / 2
		} else if v.stagger.Axis != topology.StaggerX && v.stagger.Shifted(p.Y) {
			sx += TileCols / 2
		}
	}
	return sx, sy
}
