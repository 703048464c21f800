package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"wang-painter/internal/grid"
	"wang-painter/internal/maps"
	"wang-painter/internal/tileset"
	"wang-painter/internal/topology"
	"wang-painter/internal/wang"
)

func testSets(t *testing.T) map[string]*tileset.TileSet {
	t.Helper()
	solid := tileset.New("solid", 2)
	if err := solid.AddTile(0, wang.WangID(0x10101010)); err != nil {
		t.Fatal(err)
	}
	if err := solid.AddTile(1, wang.WangID(0x20202020)); err != nil {
		t.Fatal(err)
	}
	def := tileset.Default()
	return map[string]*tileset.TileSet{def.Name: def, solid.Name: solid}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(SetupRoutes(zaptest.NewLogger(t), testSets(t)))
	t.Cleanup(srv.Close)
	return srv
}

func setURL(srv *httptest.Server, name, action string) string {
	u := srv.URL + "/api/tilesets/" + url.PathEscape(name)
	if action != "" {
		u += "/" + action
	}
	return u
}

func encodeMap(t *testing.T, m *maps.Map) json.RawMessage {
	t.Helper()
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func post(t *testing.T, u string, body any) (*http.Response, fillResponse) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(u, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out fillResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func decodeResponseMap(t *testing.T, out fillResponse) *maps.Map {
	t.Helper()
	m, err := maps.Decode(bytes.NewReader(out.Map))
	if err != nil {
		t.Fatalf("response map: %v", err)
	}
	return m
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestListTileSets(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/tilesets")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []tileSetSummary
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	want := []tileSetSummary{
		{Name: "Grass and Water", Colors: 2, Tiles: 16, Complete: true},
		{Name: "solid", Colors: 2, Tiles: 2, Complete: false},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGetTileSet(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(setURL(srv, "Grass and Water", ""))
	if err != nil {
		t.Fatal(err)
	}
	body := new(bytes.Buffer)
	body.ReadFrom(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	set, err := tileset.Parse(body.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(set.Tiles) != 16 {
		t.Errorf("got %d tiles", len(set.Tiles))
	}

	resp, err = http.Get(setURL(srv, "nope", ""))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown set status = %d", resp.StatusCode)
	}
}

func TestFill(t *testing.T) {
	srv := newTestServer(t)
	m := maps.New("blank", 3, 3, "", topology.Descriptor{})
	seed := uint64(5)

	var water wang.Constraint
	for i := 0; i < wang.NumSlots; i++ {
		if wang.IsCorner(i) {
			water = water.Constrain(i, 2)
		}
	}
	resp, out := post(t, setURL(srv, "Grass and Water", "fill"), fillRequest{
		Map:         encodeMap(t, m),
		Constraints: []cellConstraint{{Point: grid.Pt(1, 1), Constraint: water}},
		Seed:        &seed,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, error %q", resp.StatusCode, out.Error)
	}
	if out.Filled != 9 || len(out.Invalid) != 0 {
		t.Errorf("filled %d, invalid %v", out.Filled, out.Invalid)
	}
	got := decodeResponseMap(t, out)
	if id, ok := got.TileAt(1, 1); !ok || id != 15 {
		t.Errorf("constrained cell = %d, %v", id, ok)
	}
	if got.TileSet != "Grass and Water" {
		t.Errorf("TileSet = %q", got.TileSet)
	}
}

func TestFillKeepsCellsOutsideRegion(t *testing.T) {
	srv := newTestServer(t)
	m := maps.New("half", 2, 1, "Grass and Water", topology.Descriptor{})
	m.Layer.SetCell(grid.Pt(0, 0), 15)

	_, out := post(t, setURL(srv, "Grass and Water", "fill"), fillRequest{
		Map:    encodeMap(t, m),
		Region: []grid.Point{grid.Pt(1, 0)},
	})
	got := decodeResponseMap(t, out)
	if id, _ := got.TileAt(0, 0); id != 15 {
		t.Errorf("cell outside region changed to %d", id)
	}
	// Tile ids count water corners: the left side of (1,0) touches water.
	id, ok := got.TileAt(1, 0)
	if !ok || id&(1<<2) == 0 || id&(1<<3) == 0 {
		t.Errorf("filled cell %d does not continue the water", id)
	}
}

func TestFillRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)
	m := encodeMap(t, maps.New("blank", 2, 2, "", topology.Descriptor{}))
	foreign := maps.New("foreign", 2, 2, "", topology.Descriptor{})
	foreign.Layer.SetCell(grid.Pt(0, 0), 40)

	tests := []struct {
		name string
		body any
	}{
		{"no map", fillRequest{}},
		{"region outside", fillRequest{Map: m, Region: []grid.Point{grid.Pt(5, 5)}}},
		{"foreign tile", fillRequest{Map: encodeMap(t, foreign)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := post(t, setURL(srv, "Grass and Water", "fill"), tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d", resp.StatusCode)
			}
		})
	}

	resp, err := http.Post(setURL(srv, "Grass and Water", "fill"), "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", resp.StatusCode)
	}
}

func TestPaint(t *testing.T) {
	srv := newTestServer(t)
	m := maps.New("blank", 3, 3, "", topology.Descriptor{})
	seed := uint64(2)

	resp, out := post(t, setURL(srv, "Grass and Water", "paint"), paintRequest{
		Map: encodeMap(t, m), X: 1, Y: 1, Color: 2, Seed: &seed,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, error %q", resp.StatusCode, out.Error)
	}
	got := decodeResponseMap(t, out)
	if id, ok := got.TileAt(1, 1); !ok || id != 15 {
		t.Errorf("painted cell = %d, %v", id, ok)
	}
	got.Layer.Each(func(p grid.Point, _ tileset.TileID) {
		if !got.Bounds().Contains(p) {
			t.Errorf("tile outside map at %v", p)
		}
	})
}

func TestPaintUnsatisfiable(t *testing.T) {
	srv := newTestServer(t)
	m := maps.New("full", 4, 4, "solid", topology.Descriptor{})
	for _, p := range m.Bounds().Points() {
		m.Layer.SetCell(p, 0)
	}
	slot := wang.TopLeft

	resp, out := post(t, setURL(srv, "solid", "paint"), paintRequest{
		Map: encodeMap(t, m), X: 2, Y: 2, Slot: &slot, Color: 2,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out.Error == "" || len(out.Invalid) == 0 {
		t.Errorf("response = %+v", out)
	}
	got := decodeResponseMap(t, out)
	for _, p := range got.Bounds().Points() {
		if id, _ := got.TileAt(p.X, p.Y); id != 0 {
			t.Errorf("cell %v changed to %d", p, id)
		}
	}
}

func TestPaintRejectsBadColorAndSlot(t *testing.T) {
	srv := newTestServer(t)
	m := encodeMap(t, maps.New("blank", 2, 2, "", topology.Descriptor{}))
	bad := 9
	for _, req := range []paintRequest{
		{Map: m, Color: 3},
		{Map: m, Color: 1, Slot: &bad},
		{Map: m, X: 2, Color: 1},
	} {
		resp, _ := post(t, setURL(srv, "Grass and Water", "paint"), req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%+v: status = %d", req, resp.StatusCode)
		}
	}
}

func TestGenerate(t *testing.T) {
	srv := newTestServer(t)
	body := map[string]any{"name": "island", "width": 8, "height": 5, "seed": 3, "orientation": "staggered"}
	resp, out := post(t, setURL(srv, "Grass and Water", "generate"), body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, error %q", resp.StatusCode, out.Error)
	}
	if out.Filled != 40 || len(out.Invalid) != 0 {
		t.Errorf("filled %d, invalid %v", out.Filled, out.Invalid)
	}
	got := decodeResponseMap(t, out)
	if got.Name != "island" || got.Width != 8 || got.Layout.Orientation != topology.Staggered {
		t.Errorf("map header = %q %d %+v", got.Name, got.Width, got.Layout)
	}

	for _, bad := range []map[string]any{
		{"width": 8, "height": 5, "orientation": "spiral"},
		{"width": 0, "height": 5},
		{"width": 1 << 20, "height": 1 << 20},
		{"width": int64(1) << 32, "height": int64(1) << 32},
		{"width": -4, "height": -4},
	} {
		resp, _ := post(t, setURL(srv, "Grass and Water", "generate"), bad)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%v: status = %d", bad, resp.StatusCode)
		}
	}
}

func TestRecoveryAndRequestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := requestLogger(zap.New(core))(recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/explode", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if n := logs.FilterMessage("panic serving request").Len(); n != 1 {
		t.Errorf("logged %d panics", n)
	}
	reqs := logs.FilterMessage("request").All()
	if len(reqs) != 1 || reqs[0].ContextMap()["status"] != int64(http.StatusInternalServerError) {
		t.Errorf("request log = %+v", reqs)
	}
}
