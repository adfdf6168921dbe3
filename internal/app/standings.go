package service

import (
	"context"

	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/internal/domain/standings"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

type standingsFetch func(ctx context.Context, season int) ([]model.StandingEntry, error)

type standingsDerive func(races []model.Race) []model.StandingEntry

// DriverStandings returns the drivers' table of a season.
func (s *Service) DriverStandings(ctx context.Context, season int) []model.StandingEntry {
	return s.standings(ctx, season, driverStandingsKey(season), s.historical.DriverStandings, standings.Drivers)
}

// ConstructorStandings returns the constructors' table of a season.
func (s *Service) ConstructorStandings(ctx context.Context, season int) []model.StandingEntry {
	return s.standings(ctx, season, constructorStandingsKey(season), s.historical.ConstructorStandings, standings.Constructors)
}

// standings fetches a table from the historical API and caches it with the
// season's lifetime. Scrape-only seasons, and seasons the API has no table
// for, get a table derived from the race results; derived tables are never
// cached because they follow the race list.
func (s *Service) standings(ctx context.Context, season int, key string, fetch standingsFetch, derive standingsDerive) []model.StandingEntry {
	if s.scrapeSeasons[season] {
		return s.derived(ctx, season, derive)
	}
	if entries, ok := lookup[[]model.StandingEntry](s, key); ok {
		return entries
	}

	entries, err := upstream(ctx, s, func(ctx context.Context) ([]model.StandingEntry, error) {
		return fetch(ctx, season)
	})
	if err != nil {
		s.logger.Warn(ctx, "standings unavailable",
			logger.String("key", key),
			logger.Int("season", season),
			logger.Error(err))
		return []model.StandingEntry{}
	}
	if len(entries) == 0 {
		return s.derived(ctx, season, derive)
	}
	s.store(ctx, key, entries, s.ttlFor(season))
	return entries
}

func (s *Service) derived(ctx context.Context, season int, derive standingsDerive) []model.StandingEntry {
	races := s.Races(ctx, season)
	if !standings.HasResults(races) {
		return []model.StandingEntry{}
	}
	metrics.RecordDerivedStandings()
	return derive(races)
}
