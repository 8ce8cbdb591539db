// internal/server/handlers/map.go

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"placemap/internal/domain/filter"
	"placemap/internal/domain/geo"
	"placemap/internal/service/loader"
	"placemap/internal/service/view"
)

// MapHandler handles stateless map view HTTP requests
type MapHandler struct {
	loader        *loader.Loader
	reducer       *view.Reducer
	windowPresets []int
	defaultWindow int
}

// NewMapHandler creates a new map handler
func NewMapHandler(l *loader.Loader, r *view.Reducer, windowPresets []int, defaultWindow int) *MapHandler {
	return &MapHandler{
		loader:        l,
		reducer:       r,
		windowPresets: windowPresets,
		defaultWindow: defaultWindow,
	}
}

// GetView computes one reduction pass from query parameters: the time
// window, the active labels and the current viewport. Absent labels mean
// the full selection; absent or malformed viewport bounds mean no
// viewport (everything visible).
func (h *MapHandler) GetView(w http.ResponseWriter, r *http.Request) {
	windowDays := h.defaultWindow
	if s := r.URL.Query().Get("window"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil || days <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid window", err)
			return
		}
		windowDays = days
	}

	snapshot, err := h.loader.Load(r.Context(), windowDays)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to load places", err)
		return
	}

	sel := filter.Full(snapshot.Categories)
	if s := r.URL.Query().Get("labels"); s != "" {
		sel = filter.WithActive(snapshot.Categories, strings.Split(s, ","))
	}

	result := h.reducer.Reduce(snapshot, sel, parseViewport(r))

	respondWithJSON(w, http.StatusOK, struct {
		view.Result
		ActiveLabels []string `json:"active_labels"`
		Categories   []string `json:"categories"`
		WindowDays   int      `json:"window_days"`
	}{
		Result:       result,
		ActiveLabels: sel.ActiveLabels(),
		Categories:   snapshot.Categories,
		WindowDays:   windowDays,
	})
}

// GetCategories returns the category universe plus the window presets,
// the bootstrap payload for a map frontend.
func (h *MapHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.loader.Load(r.Context(), h.defaultWindow)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to load places", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories":     snapshot.Categories,
		"window_presets": h.windowPresets,
		"default_window": h.defaultWindow,
	})
}

// GetPlaces returns the canonical place set with events attached,
// including unmappable places.
func (h *MapHandler) GetPlaces(w http.ResponseWriter, r *http.Request) {
	windowDays := h.defaultWindow
	if s := r.URL.Query().Get("window"); s != "" {
		if days, err := strconv.Atoi(s); err == nil && days > 0 {
			windowDays = days
		}
	}

	snapshot, err := h.loader.Load(r.Context(), windowDays)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to load places", err)
		return
	}

	respondWithJSON(w, http.StatusOK, snapshot.Places())
}

// parseViewport reads bounding box query parameters. Geometry errors are
// treated permissively: anything short of four parseable bounds yields
// no viewport rather than a rejection.
func parseViewport(r *http.Request) *geo.Viewport {
	q := r.URL.Query()
	names := []string{"south", "west", "north", "east"}
	vals := make([]float64, len(names))
	for i, name := range names {
		s := q.Get(name)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		vals[i] = f
	}
	return &geo.Viewport{South: vals[0], West: vals[1], North: vals[2], East: vals[3]}
}

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}
	if err != nil {
		response["detail"] = err.Error()
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
