// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/pitwall/internal/adapters/cache"
	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/internal/facade"
	"github.com/okian/pitwall/pkg/logger"
)

// Dependencies required by HTTP handlers. The query façade satisfies it;
// handlers only ever see this interface.
type Dependencies interface {
	SeasonRaces(ctx context.Context, season int) ([]model.Race, error)
	DriverStandings(ctx context.Context, season int) ([]model.StandingEntry, error)
	ConstructorStandings(ctx context.Context, season int) ([]model.StandingEntry, error)
	RaceResults(ctx context.Context, season, round int) (*model.Race, error)
	RefreshCache(ctx context.Context, season int) error
	CacheStats(ctx context.Context) cache.Stats
	LatestDrivers(ctx context.Context) []model.Driver
	Seasons(ctx context.Context, from, to int) ([]model.SeasonSummary, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	racesHandler     *RacesHandler
	standingsHandler *StandingsHandler
	cacheHandler     *CacheHandler
	driversHandler   *DriversHandler
	seasonsHandler   *SeasonsHandler
	log              logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		racesHandler:     NewRacesHandler(deps),
		standingsHandler: NewStandingsHandler(deps),
		cacheHandler:     NewCacheHandler(deps),
		driversHandler:   NewDriversHandler(deps),
		seasonsHandler:   NewSeasonsHandler(deps),
		log:              logger.Get().Named("http"),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, pattern)))
	}

	route("GET /healthz", s.healthHandler.HandleHealth)
	route("GET /stats", s.statsHandler.HandleStats)
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())

	route("GET /api/seasons", s.seasonsHandler.HandleGetSeasons)
	route("GET /api/seasons/{season}/races", s.racesHandler.HandleGetRaces)
	route("GET /api/seasons/{season}/races/{round}/results", s.racesHandler.HandleGetResults)
	route("GET /api/seasons/{season}/standings/drivers", s.standingsHandler.HandleGetDrivers)
	route("GET /api/seasons/{season}/standings/constructors", s.standingsHandler.HandleGetConstructors)
	route("POST /api/seasons/{season}/refresh", s.cacheHandler.HandleRefresh)
	route("GET /api/cache/stats", s.cacheHandler.HandleStats)
	route("GET /api/drivers/latest", s.driversHandler.HandleGetLatest)

	s.log.Debug(ctx, "routes registered")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeQueryError maps façade validation errors to 400 and anything else
// to 500.
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, facade.ErrInvalidSeason):
		writeError(w, http.StatusBadRequest, "invalid_season", err)
	case errors.Is(err, facade.ErrInvalidRound):
		writeError(w, http.StatusBadRequest, "invalid_round", err)
	case errors.Is(err, facade.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "invalid_range", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// pathInt reads an integer path value. Non-numeric input is reported with
// the façade's validation error so that it maps to the same response.
func pathInt(r *http.Request, name string, kind error) (int, error) {
	raw := r.PathValue(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", kind, raw)
	}
	return n, nil
}

func queryInt(r *http.Request, name string, kind error) (int, error) {
	raw := r.URL.Query().Get(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", kind, name, raw)
	}
	return n, nil
}
