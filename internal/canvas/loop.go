// Package canvas runs a shared painting session: one loop goroutine owns
// the board and the brushes, viewers send it input events and receive
// snapshots to render.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"wang-painter/internal/brush"
	"wang-painter/internal/filler"
	"wang-painter/internal/grid"
	"wang-painter/internal/logger"
	"wang-painter/internal/maps"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
)

const InputChanSize = 256

// State is a snapshot sent to each session for rendering.
type State struct {
	Map     *maps.Map
	Set     *tileset.TileSet
	Oracle  topology.Oracle
	Invalid grid.Region
	Viewers []ViewerSnapshot
	Tick    uint64
}

// Viewer returns the snapshot of viewer id.
func (s State) Viewer(id string) (ViewerSnapshot, bool) {
	for _, v := range s.Viewers {
		if v.ID == id {
			return v, true
		}
	}
	return ViewerSnapshot{}, false
}

// RenderChan is the per-session channel that receives state snapshots.
type RenderChan chan State

// savedState holds the cursor and brush color of viewers who left.
type savedState struct {
	Cursor grid.Point
	Color  int
}

// Loop is the central painting loop.
type Loop struct {
	board     *Board
	inputCh   chan InputEvent
	tickCount uint64
	log       *zap.Logger

	// snapshot of the board, rebuilt after every change
	snapMap     *maps.Map
	snapInvalid grid.Region

	mu          sync.RWMutex
	viewers     map[string]*Viewer
	renderChans map[string]RenderChan
	saved       map[string]savedState // keyed by username

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop painting on board.
func NewLoop(ctx context.Context, board *Board) *Loop {
	l := &Loop{
		board:       board,
		inputCh:     make(chan InputEvent, InputChanSize),
		log:         logger.L(ctx).Named("canvas"),
		viewers:     make(map[string]*Viewer),
		renderChans: make(map[string]RenderChan),
		saved:       make(map[string]savedState),
		stopCh:      make(chan struct{}),
	}
	l.refresh()
	return l
}

// InputChan returns the shared input channel for sessions to send events.
func (l *Loop) InputChan() chan<- InputEvent {
	return l.inputCh
}

// AddViewer registers a viewer using their username as identity.
// If the username was seen before, cursor and brush color are restored.
// Returns the effective viewer ID and the render channel.
func (l *Loop) AddViewer(name string) (string, RenderChan) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// If this username is already online, add a suffix
	id := name
	if _, online := l.viewers[id]; online {
		id = fmt.Sprintf("%s_%04d", name, time.Now().UnixNano()%10000)
	}

	st, ok := l.saved[name]
	if !ok {
		st = savedState{Cursor: l.board.Map.Spawn, Color: 1}
	}
	l.viewers[id] = &Viewer{
		ID:     id,
		Name:   name,
		Cursor: l.board.Clamp(st.Cursor),
		Brush:  l.board.NewBrush(st.Color, brushOptions(l.log, id)...),
	}
	ch := make(RenderChan, 2)
	l.renderChans[id] = ch
	l.log.Info("viewer joined", zap.String("viewer", id))
	return id, ch
}

// RemoveViewer saves the viewer's state and unregisters them.
func (l *Loop) RemoveViewer(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.viewers[id]; ok {
		l.saved[v.Name] = savedState{Cursor: v.Cursor, Color: v.Brush.Color()}
		delete(l.viewers, id)
		l.log.Info("viewer left", zap.String("viewer", id))
	}
	if ch, ok := l.renderChans[id]; ok {
		close(ch)
		delete(l.renderChans, id)
	}
}

// Run ticks the loop until Stop is called or ctx is done.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

// Stop shuts down the loop.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Loop) tick(ctx context.Context) {
	// Drain all pending input events
	for {
		select {
		case ev := <-l.inputCh:
			l.processInput(ctx, ev)
		default:
			goto drained
		}
	}
drained:

	l.tickCount++

	l.mu.RLock()
	state := State{
		Map:     l.snapMap,
		Set:     l.board.Set,
		Oracle:  l.board.Oracle,
		Invalid: l.snapInvalid,
		Viewers: make([]ViewerSnapshot, 0, len(l.viewers)),
		Tick:    l.tickCount,
	}
	for _, v := range l.viewers {
		if v.StatusTimer > 0 {
			v.StatusTimer--
			if v.StatusTimer == 0 {
				v.Status = ""
			}
		}
		state.Viewers = append(state.Viewers, v.Snapshot())
	}

	// Non-blocking send to each render channel
	for _, ch := range l.renderChans {
		select {
		case ch <- state:
		default:
			// Drop frame for slow client
		}
	}
	l.mu.RUnlock()
}

// refresh rebuilds the snapshot handed to sessions after the board changed.
func (l *Loop) refresh() {
	l.snapMap = l.board.Snapshot()
	l.snapInvalid = l.board.Invalid.Clone()
}

func (l *Loop) processInput(ctx context.Context, ev InputEvent) {
	l.mu.RLock()
	v, ok := l.viewers[ev.ViewerID]
	l.mu.RUnlock()
	if !ok {
		return
	}

	move := grid.Point{}
	switch ev.Action {
	case ActionUp:
		move.Y = -1
	case ActionDown:
		move.Y = 1
	case ActionLeft:
		move.X = -1
	case ActionRight:
		move.X = 1
	case ActionColor:
		if ev.Color < 0 || ev.Color > l.board.Set.ColorCount() {
			v.say(fmt.Sprintf("no color %d", ev.Color))
			return
		}
		v.Brush.SetColor(ev.Color)
		return
	case ActionPaint:
		l.paint(v)
		return
	case ActionRegenerate:
		l.regenerate(ctx, v)
		return
	default:
		return
	}
	v.Cursor = l.board.Clamp(v.Cursor.Add(move))
}

func (l *Loop) paint(v *Viewer) {
	res, err := l.board.Paint(v.Brush, v.Cursor)
	switch {
	case errors.Is(err, brush.ErrUnsatisfiable):
		v.say("nothing fits there")
		l.log.Debug("paint rejected", zap.String("viewer", v.ID), zap.Stringer("cell", v.Cursor), zap.Int("invalid", res.Invalid.Len()))
		return
	case err != nil:
		v.say(err.Error())
		return
	}
	l.refresh()
	v.say(fmt.Sprintf("painted %d cells", res.Filled))
}

func (l *Loop) regenerate(ctx context.Context, v *Viewer) {
	res, err := l.board.Regenerate(ctx, l.board.Seed+1)
	if err != nil {
		v.say("regenerate failed")
		l.log.Warn("regenerate failed", zap.Error(err))
		return
	}
	l.refresh()
	v.say(fmt.Sprintf("seed %d, %d unsatisfiable", l.board.Seed, res.Invalid.Len()))
}

// brushOptions tags the fill logs of a viewer's brush with the viewer.
func brushOptions(log *zap.Logger, id string) []filler.Option {
	return []filler.Option{filler.WithLogger(log.With(zap.String("viewer", id)))}
}
