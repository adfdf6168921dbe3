package api

import (
	"net/http"

	"github.com/okian/pitwall/internal/facade"
)

// SeasonsHandler serves multi-season summaries.
type SeasonsHandler struct {
	deps Dependencies
}

// NewSeasonsHandler creates a new seasons handler.
func NewSeasonsHandler(deps Dependencies) *SeasonsHandler {
	return &SeasonsHandler{deps: deps}
}

// HandleGetSeasons handles GET /api/seasons?from=&to=.
func (h *SeasonsHandler) HandleGetSeasons(w http.ResponseWriter, r *http.Request) {
	from, err := queryInt(r, "from", facade.ErrInvalidRange)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	to, err := queryInt(r, "to", facade.ErrInvalidRange)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	seasons, err := h.deps.Seasons(r.Context(), from, to)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seasons)
}
