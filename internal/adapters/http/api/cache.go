package api

import (
	"net/http"

	"github.com/okian/pitwall/internal/facade"
)

type refreshResponse struct {
	Status string `json:"status"`
	Season int    `json:"season"`
}

// CacheHandler handles cache administration.
type CacheHandler struct {
	deps Dependencies
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(deps Dependencies) *CacheHandler {
	return &CacheHandler{deps: deps}
}

// HandleRefresh handles POST /api/seasons/{season}/refresh.
func (h *CacheHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	season, err := pathInt(r, "season", facade.ErrInvalidSeason)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	if err := h.deps.RefreshCache(r.Context(), season); err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Status: "refreshed", Season: season})
}

// HandleStats handles GET /api/cache/stats.
func (h *CacheHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.CacheStats(r.Context()))
}
