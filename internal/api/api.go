// Package api serves the tile sets over HTTP: clients post a map and get
// it back filled, painted or freshly generated.
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"wang-painter/internal/tileset"
)

// RequestTimeout bounds a single fill. Fills check for it between rows.
const RequestTimeout = 30 * time.Second

// maxBody bounds request bodies; a 1024x1024 map is well below it.
const maxBody = 16 << 20

// SetupRoutes configures all routes and returns the router.
func SetupRoutes(log *zap.Logger, sets map[string]*tileset.TileSet) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(recovery)
	r.Use(middleware.Timeout(RequestTimeout))

	h := NewTileSetHandler(sets)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tilesets", h.ListTileSets)
		r.Route("/tilesets/{name}", func(r chi.Router) {
			r.Get("/", h.GetTileSet)
			r.Post("/fill", h.Fill)
			r.Post("/paint", h.Paint)
			r.Post("/generate", h.Generate)
		})

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}

// TileSetHandler handles the tile set endpoints.
type TileSetHandler struct {
	sets map[string]*tileset.TileSet
}

// NewTileSetHandler creates a TileSetHandler over sets, keyed by name.
func NewTileSetHandler(sets map[string]*tileset.TileSet) *TileSetHandler {
	return &TileSetHandler{sets: sets}
}

// tileSetSummary is one entry of the tile set list.
type tileSetSummary struct {
	Name     string `json:"name"`
	Colors   int    `json:"colors"`
	Tiles    int    `json:"tiles"`
	Complete bool   `json:"complete"`
}

// ListTileSets handles GET /api/tilesets
func (h *TileSetHandler) ListTileSets(w http.ResponseWriter, r *http.Request) {
	out := make([]tileSetSummary, 0, len(h.sets))
	for _, s := range h.sets {
		out = append(out, tileSetSummary{
			Name:     s.Name,
			Colors:   s.ColorCount(),
			Tiles:    len(s.Tiles),
			Complete: s.IsComplete(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	respondJSON(w, http.StatusOK, out)
}

// GetTileSet handles GET /api/tilesets/{name} and returns the set in its
// file format.
func (h *TileSetHandler) GetTileSet(w http.ResponseWriter, r *http.Request) {
	set, ok := h.lookup(w, r)
	if !ok {
		return
	}
	data, err := tileset.Marshal(set)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, json.RawMessage(data))
}

func (h *TileSetHandler) lookup(w http.ResponseWriter, r *http.Request) (*tileset.TileSet, bool) {
	name := chi.URLParam(r, "name")
	set, ok := h.sets[name]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown tile set "+name)
	}
	return set, ok
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
