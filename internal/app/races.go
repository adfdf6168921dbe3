package service

import (
	"context"
	"fmt"

	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// Races returns the season calendar. Closed seasons come from the
// historical API and live seasons from the live API; a season neither API
// carries is assembled from scraped pages. Failures yield an empty,
// uncached list.
func (s *Service) Races(ctx context.Context, season int) []model.Race {
	key := racesKey(season)
	if races, ok := lookup[[]model.Race](s, key); ok {
		return races
	}

	var (
		races []model.Race
		err   error
		from  = model.SourceLive
	)
	switch {
	case s.scrapeSeasons[season]:
		races, err = s.assemble(ctx, season)
		from = model.SourceScraped
	case s.closed(season):
		from = model.SourceHistorical
		races, err = upstream(ctx, s, func(ctx context.Context) ([]model.Race, error) {
			return s.historical.SeasonRaces(ctx, season)
		})
	default:
		races, err = upstream(ctx, s, func(ctx context.Context) ([]model.Race, error) {
			return s.live.SeasonRaces(ctx, season)
		})
	}
	if err == nil && len(races) == 0 && from != model.SourceScraped {
		s.logger.Info(ctx, "season not covered by API, assembling from pages",
			logger.String("source", string(from)),
			logger.Int("season", season))
		races, err = s.assemble(ctx, season)
		from = model.SourceScraped
	}
	if err != nil {
		s.logger.Warn(ctx, "season races unavailable",
			logger.String("source", string(from)),
			logger.Int("season", season),
			logger.Error(err))
		return []model.Race{}
	}
	if len(races) == 0 {
		return []model.Race{}
	}

	metrics.RecordReconciledRaces(string(from))
	s.store(ctx, key, races, s.ttlFor(season))
	return races
}

// assemble builds a season from the first schedule source that answers,
// then enriches every round with its scraped timetable and historical
// results. A failing round keeps its schedule data. A cancelled ctx leaves
// later rounds unenriched, so the season is reported as an error and never
// reaches the cache.
func (s *Service) assemble(ctx context.Context, season int) ([]model.Race, error) {
	races := s.schedule(ctx, season)
	if len(races) == 0 {
		return nil, ctx.Err()
	}

	err := s.rounds.Run(ctx, len(races), func(ctx context.Context, i int) error {
		race := &races[i]
		race.Season = season
		race.Source = model.SourceScraped
		race.Sessions = s.mergeSessions(ctx, season, *race)
		if r := s.RaceResults(ctx, season, race.Round); r != nil {
			race.Results = r.Results
		}
		return nil
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("season %d enrichment interrupted: %w", season, err)
	}
	model.SortByRound(races)
	return races, nil
}

func (s *Service) schedule(ctx context.Context, season int) []model.Race {
	for i, src := range s.schedules {
		races, err := upstream(ctx, s, func(ctx context.Context) ([]model.Race, error) {
			return src.Schedule(ctx, season)
		})
		if err != nil {
			s.logger.Warn(ctx, "schedule source failed",
				logger.Int("source", i),
				logger.Int("season", season),
				logger.Error(err))
			continue
		}
		if len(races) > 0 {
			return races
		}
	}
	return nil
}

// mergeSessions is right-biased: a freshly scraped non-empty list wins,
// otherwise the last good list for the round is kept, otherwise whatever
// the schedule page carried. The chosen list is remembered per round.
func (s *Service) mergeSessions(ctx context.Context, season int, race model.Race) []model.Session {
	key := sessionsKey(season, race.Round)
	fresh, err := upstream(ctx, s, func(ctx context.Context) ([]model.Session, error) {
		return s.sessions.Sessions(ctx, season, race)
	})
	if err != nil {
		s.logger.Warn(ctx, "session scrape failed",
			logger.Int("season", season),
			logger.Int("round", race.Round),
			logger.Error(err))
	}
	if len(fresh) > 0 {
		s.store(ctx, key, fresh, s.closedTTL)
		return fresh
	}
	if previous, ok := lookup[[]model.Session](s, key); ok && len(previous) > 0 {
		return previous
	}
	if len(race.Sessions) > 0 {
		s.store(ctx, key, race.Sessions, s.closedTTL)
		return race.Sessions
	}
	return []model.Session{}
}

// RaceResults returns one round with its classification, or nil when the
// historical API has none. Only non-empty answers are cached.
func (s *Service) RaceResults(ctx context.Context, season, round int) *model.Race {
	key := raceResultsKey(season, round)
	if race, ok := lookup[*model.Race](s, key); ok {
		return race
	}
	race, err := upstream(ctx, s, func(ctx context.Context) (*model.Race, error) {
		return s.historical.RaceResults(ctx, season, round)
	})
	if err != nil {
		s.logger.Warn(ctx, "race results unavailable",
			logger.String("source", string(model.SourceHistorical)),
			logger.Int("season", season),
			logger.Int("round", round),
			logger.Error(err))
		return nil
	}
	if race == nil || len(race.Results) == 0 {
		return nil
	}
	s.store(ctx, key, race, s.closedTTL)
	return race
}
