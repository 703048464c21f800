package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"wang-painter/internal/brush"
	"wang-painter/internal/filler"
	"wang-painter/internal/grid"
	"wang-painter/internal/maps"
	"wang-painter/internal/terrain"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
	"wang-painter/internal/wang"
)

// cellConstraint is the constraint of one cell in a fill request.
type cellConstraint struct {
	grid.Point
	wang.Constraint
}

// fillRequest is the body of POST /api/tilesets/{name}/fill. An empty
// region fills the whole map.
type fillRequest struct {
	Map           json.RawMessage  `json:"map"`
	Region        []grid.Point     `json:"region"`
	Constraints   []cellConstraint `json:"constraints"`
	Seed          *uint64          `json:"seed"`
	PreferDesired bool             `json:"prefer_desired"`
	Erasing       bool             `json:"erasing"`
}

// paintRequest is the body of POST /api/tilesets/{name}/paint. Without a
// slot the whole tile under X,Y is painted.
type paintRequest struct {
	Map   json.RawMessage `json:"map"`
	X     int             `json:"x"`
	Y     int             `json:"y"`
	Slot  *int            `json:"slot"`
	Color int             `json:"color"`
	Seed  *uint64         `json:"seed"`
}

// generateRequest is the body of POST /api/tilesets/{name}/generate.
type generateRequest struct {
	Name string `json:"name"`
	terrain.Params
	topology.Descriptor
}

// fillResponse reports a filled map and the cells left unsatisfied.
type fillResponse struct {
	Map     json.RawMessage `json:"map"`
	Filled  int             `json:"filled"`
	Erased  int             `json:"erased"`
	Invalid []grid.Point    `json:"invalid"`
	Error   string          `json:"error,omitempty"`
}

// Fill handles POST /api/tilesets/{name}/fill
func (h *TileSetHandler) Fill(w http.ResponseWriter, r *http.Request) {
	set, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req fillRequest
	if !decode(w, r, &req) {
		return
	}
	m, oracle, err := decodeMap(req.Map, set)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	region := grid.NewRegion(req.Region...)
	if region.IsEmpty() {
		region = grid.RectRegion(m.Bounds())
	}
	for _, p := range region.Points() {
		if !m.Bounds().Contains(p) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("region cell %v is outside the map", p))
			return
		}
	}
	constraints := grid.NewGrid[wang.Constraint]()
	for _, c := range req.Constraints {
		constraints.Set(c.Point, c.Constraint)
	}

	opts := []filler.Option{filler.WithPreferDesired(req.PreferDesired), filler.WithErasing(req.Erasing)}
	if req.Seed != nil {
		opts = append(opts, filler.WithSeed(*req.Seed))
	}
	f := filler.New(set, oracle, opts...)

	// The map is both background and target: cells outside the region
	// keep their tiles and guide the fill.
	res, err := f.FillContext(r.Context(), m.Layer, m.Layer, constraints, region)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondFilled(w, http.StatusOK, m, res, "")
}

// Paint handles POST /api/tilesets/{name}/paint
func (h *TileSetHandler) Paint(w http.ResponseWriter, r *http.Request) {
	set, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req paintRequest
	if !decode(w, r, &req) {
		return
	}
	m, oracle, err := decodeMap(req.Map, set)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := grid.Pt(req.X, req.Y)
	if !m.Bounds().Contains(p) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("cell %v is outside the map", p))
		return
	}
	if req.Color < 0 || req.Color > set.ColorCount() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("tile set %q has no color %d", set.Name, req.Color))
		return
	}
	slot := wang.NumSlots
	if req.Slot != nil {
		slot = *req.Slot
	}
	if slot < 0 || slot > wang.NumSlots {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("slot %d out of range", slot))
		return
	}

	var opts []filler.Option
	if req.Seed != nil {
		opts = append(opts, filler.WithSeed(*req.Seed))
	}
	b := brush.New(set, oracle, req.Color, opts...)
	stroke := b.At(m.Layer, p, slot)
	stroke.Region = stroke.Region.Intersect(grid.RectRegion(m.Bounds()))

	res, err := b.Apply(m.Layer, stroke)
	if errors.Is(err, brush.ErrUnsatisfiable) {
		respondFilled(w, http.StatusConflict, m, res, err.Error())
		return
	}
	respondFilled(w, http.StatusOK, m, res, "")
}

// Generate handles POST /api/tilesets/{name}/generate
func (h *TileSetHandler) Generate(w http.ResponseWriter, r *http.Request) {
	set, ok := h.lookup(w, r)
	if !ok {
		return
	}
	req := generateRequest{Name: "generated", Params: terrain.DefaultParams()}
	if !decode(w, r, &req) {
		return
	}
	if req.Width <= 0 || req.Height <= 0 || req.Width > maps.MaxCells/req.Height {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid map size %dx%d", req.Width, req.Height))
		return
	}
	oracle, err := topology.New(req.Descriptor)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	layer, res, err := terrain.Generate(r.Context(), set, oracle, req.Params)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m := maps.New(req.Name, req.Width, req.Height, set.Name, req.Descriptor)
	m.Layer = layer
	respondFilled(w, http.StatusOK, m, res, "")
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// decodeMap reads the map of a request and checks it against set.
func decodeMap(raw json.RawMessage, set *tileset.TileSet) (*maps.Map, topology.Oracle, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil, errors.New("request has no map")
	}
	m, err := maps.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, err
	}
	if m.TileSet == "" {
		m.TileSet = set.Name
	}
	if err := m.Validate(set); err != nil {
		return nil, nil, err
	}
	oracle, err := m.Oracle()
	if err != nil {
		return nil, nil, err
	}
	return m, oracle, nil
}

func respondFilled(w http.ResponseWriter, status int, m *maps.Map, res filler.Result, msg string) {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	invalid := res.Invalid.Points()
	if invalid == nil {
		invalid = []grid.Point{}
	}
	respondJSON(w, status, fillResponse{
		Map:     buf.Bytes(),
		Filled:  res.Filled,
		Erased:  res.Erased,
		Invalid: invalid,
		Error:   msg,
	})
}
