package canvas

import (
	"wang-painter/internal/brush"
	"wang-painter/internal/grid"
)

// Action represents a viewer input action.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionColor // select InputEvent.Color for the brush
	ActionPaint // paint the cursor cell with the brush
	ActionRegenerate
	ActionQuit
)

// InputEvent carries a viewer action into the loop.
type InputEvent struct {
	ViewerID string
	Action   Action
	Color    int // for ActionColor; 0 erases
}

// Viewer holds the loop state of a connected viewer.
type Viewer struct {
	ID     string
	Name   string
	Cursor grid.Point
	Brush  *brush.Brush

	Status      string
	StatusTimer int // ticks until Status is cleared
}

// say shows msg in the viewer's HUD for a while.
func (v *Viewer) say(msg string) {
	v.Status = msg
	v.StatusTimer = StatusDuration
}

// ViewerSnapshot is a read-only copy of viewer state for rendering.
type ViewerSnapshot struct {
	ID     string
	Name   string
	Cursor grid.Point
	Color  int
	Mode   brush.Mode
	Status string
}

// Snapshot returns a read-only copy of the viewer.
func (v *Viewer) Snapshot() ViewerSnapshot {
	return ViewerSnapshot{
		ID:     v.ID,
		Name:   v.Name,
		Cursor: v.Cursor,
		Color:  v.Brush.Color(),
		Mode:   v.Brush.Mode(),
		Status: v.Status,
	}
}
