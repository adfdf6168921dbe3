package api

import (
	"net/http"

	"github.com/okian/pitwall/internal/facade"
)

// RacesHandler serves season calendars and single-round results.
type RacesHandler struct {
	deps Dependencies
}

// NewRacesHandler creates a new races handler.
func NewRacesHandler(deps Dependencies) *RacesHandler {
	return &RacesHandler{deps: deps}
}

// HandleGetRaces handles GET /api/seasons/{season}/races.
func (h *RacesHandler) HandleGetRaces(w http.ResponseWriter, r *http.Request) {
	season, err := pathInt(r, "season", facade.ErrInvalidSeason)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	races, err := h.deps.SeasonRaces(r.Context(), season)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, races)
}

// HandleGetResults handles GET /api/seasons/{season}/races/{round}/results.
// An absent round answers 204.
func (h *RacesHandler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	season, err := pathInt(r, "season", facade.ErrInvalidSeason)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	round, err := pathInt(r, "round", facade.ErrInvalidRound)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	race, err := h.deps.RaceResults(r.Context(), season, round)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	if race == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, race)
}
