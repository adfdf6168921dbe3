// Package service is the reconciliation layer: it decides which source
// answers a season query, merges scraped data with API results and picks
// the cache lifetime of every answer.
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/semaphore"

	"github.com/okian/pitwall/internal/adapters/batch"
	"github.com/okian/pitwall/internal/adapters/cache"
	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// HistoricalSource serves closed seasons and single-round results.
type HistoricalSource interface {
	SeasonRaces(ctx context.Context, season int) ([]model.Race, error)
	DriverStandings(ctx context.Context, season int) ([]model.StandingEntry, error)
	ConstructorStandings(ctx context.Context, season int) ([]model.StandingEntry, error)
	RaceResults(ctx context.Context, season, round int) (*model.Race, error)
}

// LiveSource serves the running season.
type LiveSource interface {
	SeasonRaces(ctx context.Context, year int) ([]model.Race, error)
	LatestDrivers(ctx context.Context, year int) ([]model.Driver, error)
}

// ScheduleSource scrapes a season calendar.
type ScheduleSource interface {
	Schedule(ctx context.Context, season int) ([]model.Race, error)
}

// SessionSource scrapes the timetable of one race.
type SessionSource interface {
	Sessions(ctx context.Context, season int, race model.Race) ([]model.Session, error)
}

// Cache is the subset of the store the service relies on.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration) error
	Delete(key string)
	Stats() cache.Stats
}

const (
	defaultClosedTTL  = 24 * time.Hour
	defaultCurrentTTL = 5 * time.Minute
	defaultDriversTTL = time.Hour
)

// Service reconciles the upstream sources behind a read-through cache.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	cache      Cache
	ownedCache *cache.MemoryStore
	historical HistoricalSource
	live       LiveSource
	schedules  []ScheduleSource
	sessions   SessionSource
	rounds     *batch.Runner
	seasons    *batch.Runner
	// window bounds upstream calls in flight across every runner.
	window *semaphore.Weighted

	// Configuration
	closedTTL     time.Duration
	currentTTL    time.Duration
	driversTTL    time.Duration
	lastClosed    int
	scrapeSeasons map[int]bool
	batchSize     int
	roundDelay    time.Duration
	seasonDelay   time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	// State
	started bool

	logger logger.Logger
}

// New constructs a Service. Sources left unset answer with no data.
func New(opts ...Option) *Service {
	s := &Service{
		historical:    noSource{},
		live:          noSource{},
		sessions:      noSource{},
		closedTTL:     defaultClosedTTL,
		currentTTL:    defaultCurrentTTL,
		driversTTL:    defaultDriversTTL,
		scrapeSeasons: make(map[int]bool),
		batchSize:     5,
		roundDelay:    500 * time.Millisecond,
		seasonDelay:   3 * time.Second,
		sweepInterval: 10 * time.Minute,
		now:           time.Now,
		logger:        logger.Get().Named("reconciler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.window = semaphore.NewWeighted(int64(s.batchSize))
	s.rounds = batch.New(
		batch.WithName("rounds"),
		batch.WithSize(s.batchSize),
		batch.WithDelay(s.roundDelay),
		batch.WithLogger(s.logger),
	)
	s.seasons = batch.New(
		batch.WithName("seasons"),
		batch.WithSize(s.batchSize),
		batch.WithDelay(s.seasonDelay),
		batch.WithLogger(s.logger),
	)
	return s
}

// Start creates the cache store unless one was injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.cache == nil {
		store, err := cache.New(
			cache.WithClock(s.now),
			cache.WithSweepInterval(s.sweepInterval),
		)
		if err != nil {
			return fmt.Errorf("create cache: %w", err)
		}
		s.cache = store
		s.ownedCache = store
	}

	s.started = true
	s.logger.Info(ctx, "reconciliation service started",
		logger.Int("lastClosedSeason", s.lastClosedSeason()),
		logger.Duration("closedTTL", s.closedTTL),
		logger.Duration("currentTTL", s.currentTTL),
		logger.Int("scheduleSources", len(s.schedules)),
		logger.Int("batchSize", s.batchSize),
	)
	return nil
}

// Stop closes a store created by Start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.ownedCache != nil {
		s.ownedCache.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "reconciliation service stopped")
}

// Refresh drops the season's races and standings so the next query
// re-fetches them. Scraped session lists are kept.
func (s *Service) Refresh(ctx context.Context, season int) {
	for _, key := range []string{racesKey(season), driverStandingsKey(season), constructorStandingsKey(season)} {
		s.cache.Delete(key)
	}
	s.logger.Info(ctx, "season cache refreshed", logger.Int("season", season))
}

// CacheStats returns the store snapshot and publishes it as metrics.
func (s *Service) CacheStats() cache.Stats {
	st := s.cache.Stats()
	metrics.UpdateCacheEntries(st.Total, st.Active, st.Expired)
	return st
}

// LatestDrivers returns the entry list of the most recent live session.
func (s *Service) LatestDrivers(ctx context.Context) []model.Driver {
	const key = latestDriversKey
	if v, ok := lookup[[]model.Driver](s, key); ok {
		return v
	}
	year := s.now().Year()
	drivers, err := upstream(ctx, s, func(ctx context.Context) ([]model.Driver, error) {
		return s.live.LatestDrivers(ctx, year)
	})
	if err != nil {
		s.logger.Warn(ctx, "latest drivers unavailable", logger.Int("season", year), logger.Error(err))
		return []model.Driver{}
	}
	if len(drivers) == 0 {
		return []model.Driver{}
	}
	s.store(ctx, key, drivers, s.driversTTL)
	return drivers
}

// Seasons returns a summary per season in [from, to], walking seasons in
// batches. Each season goes through Races and is cached there.
func (s *Service) Seasons(ctx context.Context, from, to int) []model.SeasonSummary {
	if to < from {
		return []model.SeasonSummary{}
	}
	out := make([]model.SeasonSummary, to-from+1)
	err := s.seasons.Run(ctx, len(out), func(ctx context.Context, i int) error {
		races := s.Races(ctx, from+i)
		out[i] = model.SeasonSummary{Season: from + i, Races: races, Count: len(races)}
		return nil
	})
	if err != nil {
		s.logger.Warn(ctx, "season walk interrupted",
			logger.Int("from", from), logger.Int("to", to), logger.Error(err))
		// seasons never reached are reported empty
		for i := range out {
			if out[i].Season == 0 {
				out[i] = model.SeasonSummary{Season: from + i, Races: []model.Race{}}
			}
		}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scrape := lo.Keys(s.scrapeSeasons)
	sort.Ints(scrape)
	stats := map[string]interface{}{
		"started":          s.started,
		"lastClosedSeason": s.lastClosedSeason(),
		"closedSeasonTTL":  s.closedTTL.String(),
		"currentSeasonTTL": s.currentTTL.String(),
		"driversTTL":       s.driversTTL.String(),
		"scrapeSeasons":    scrape,
		"batchSize":        s.batchSize,
		"scheduleSources":  len(s.schedules),
	}
	if s.cache != nil {
		stats["cache"] = s.CacheStats()
	}
	return stats
}

func (s *Service) lastClosedSeason() int {
	if s.lastClosed > 0 {
		return s.lastClosed
	}
	return s.now().Year() - 1
}

func (s *Service) closed(season int) bool { return season <= s.lastClosedSeason() }

func (s *Service) ttlFor(season int) time.Duration {
	if s.closed(season) {
		return s.closedTTL
	}
	return s.currentTTL
}

func (s *Service) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := s.cache.Set(key, value, ttl); err != nil {
		s.logger.Error(ctx, "cache write failed", logger.String("key", key), logger.Error(err))
		return
	}
	s.logger.Debug(ctx, "cached", logger.String("key", key), logger.Duration("ttl", ttl))
}

// upstream runs one source call inside the shared window. Season and round
// runners nest, so the window is taken per call and never held while
// waiting on other tasks.
func upstream[T any](ctx context.Context, s *Service, call func(ctx context.Context) (T, error)) (T, error) {
	if err := s.window.Acquire(ctx, 1); err != nil {
		var zero T
		return zero, err
	}
	defer s.window.Release(1)
	return call(ctx)
}

// lookup is a typed cache read; a value of another type is a miss.
func lookup[T any](s *Service, key string) (T, bool) {
	var zero T
	v, ok := s.cache.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

const latestDriversKey = "latest-drivers"

func racesKey(season int) string { return fmt.Sprintf("races:%d", season) }

func driverStandingsKey(season int) string { return fmt.Sprintf("driver-standings:%d", season) }

func constructorStandingsKey(season int) string {
	return fmt.Sprintf("constructor-standings:%d", season)
}

func raceResultsKey(season, round int) string { return fmt.Sprintf("race-results:%d:%d", season, round) }

func sessionsKey(season, round int) string { return fmt.Sprintf("sessions:%d:%d", season, round) }
