package api

import "net/http"

// DriversHandler serves the latest live entry list.
type DriversHandler struct {
	deps Dependencies
}

// NewDriversHandler creates a new drivers handler.
func NewDriversHandler(deps Dependencies) *DriversHandler {
	return &DriversHandler{deps: deps}
}

// HandleGetLatest handles GET /api/drivers/latest.
func (h *DriversHandler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.LatestDrivers(r.Context()))
}
