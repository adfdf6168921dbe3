package api

import (
	"context"
	"net/http"

	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/internal/facade"
)

// StandingsHandler serves championship tables.
type StandingsHandler struct {
	deps Dependencies
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps Dependencies) *StandingsHandler {
	return &StandingsHandler{deps: deps}
}

// HandleGetDrivers handles GET /api/seasons/{season}/standings/drivers.
func (h *StandingsHandler) HandleGetDrivers(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.deps.DriverStandings)
}

// HandleGetConstructors handles GET /api/seasons/{season}/standings/constructors.
func (h *StandingsHandler) HandleGetConstructors(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.deps.ConstructorStandings)
}

func (h *StandingsHandler) serve(w http.ResponseWriter, r *http.Request,
	query func(ctx context.Context, season int) ([]model.StandingEntry, error),
) {
	season, err := pathInt(r, "season", facade.ErrInvalidSeason)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	entries, err := query(r.Context(), season)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
