// Package facade is the caller-facing query surface. It validates input
// and delegates to the reconciliation service; it holds no business logic.
package facade

import (
	"context"
	"fmt"

	"github.com/okian/pitwall/internal/adapters/cache"
	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/pkg/logger"
)

// Reconciler is the service the façade delegates to.
type Reconciler interface {
	Races(ctx context.Context, season int) []model.Race
	DriverStandings(ctx context.Context, season int) []model.StandingEntry
	ConstructorStandings(ctx context.Context, season int) []model.StandingEntry
	RaceResults(ctx context.Context, season, round int) *model.Race
	Refresh(ctx context.Context, season int)
	CacheStats() cache.Stats
	LatestDrivers(ctx context.Context) []model.Driver
	Seasons(ctx context.Context, from, to int) []model.SeasonSummary
	GetStats() map[string]interface{}
}

const defaultMaxSeasonSpan = 30

// Facade validates queries before they reach the Reconciler.
type Facade struct {
	svc     Reconciler
	maxSpan int
	log     logger.Logger
}

// Option applies a configuration option to the Facade.
type Option func(*Facade)

// WithMaxSeasonSpan caps how many seasons one range query may cover.
func WithMaxSeasonSpan(n int) Option {
	return func(f *Facade) {
		if n > 0 {
			f.maxSpan = n
		}
	}
}

// WithLogger sets the façade logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Facade) {
		if l != nil {
			f.log = l
		}
	}
}

// New creates a Facade over svc.
func New(svc Reconciler, opts ...Option) *Facade {
	f := &Facade{svc: svc, maxSpan: defaultMaxSeasonSpan, log: logger.Get().Named("facade")}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func validSeason(season int) error {
	if season <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSeason, season)
	}
	return nil
}

func validRound(round int) error {
	if round <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRound, round)
	}
	return nil
}

// SeasonRaces returns the calendar of season.
func (f *Facade) SeasonRaces(ctx context.Context, season int) ([]model.Race, error) {
	if err := validSeason(season); err != nil {
		return nil, err
	}
	return f.svc.Races(ctx, season), nil
}

// DriverStandings returns the drivers' championship table.
func (f *Facade) DriverStandings(ctx context.Context, season int) ([]model.StandingEntry, error) {
	if err := validSeason(season); err != nil {
		return nil, err
	}
	return f.svc.DriverStandings(ctx, season), nil
}

// ConstructorStandings returns the constructors' championship table.
func (f *Facade) ConstructorStandings(ctx context.Context, season int) ([]model.StandingEntry, error) {
	if err := validSeason(season); err != nil {
		return nil, err
	}
	return f.svc.ConstructorStandings(ctx, season), nil
}

// RaceResults returns one round with its results, or nil when absent.
func (f *Facade) RaceResults(ctx context.Context, season, round int) (*model.Race, error) {
	if err := validSeason(season); err != nil {
		return nil, err
	}
	if err := validRound(round); err != nil {
		return nil, err
	}
	return f.svc.RaceResults(ctx, season, round), nil
}

// RefreshCache invalidates the season.
func (f *Facade) RefreshCache(ctx context.Context, season int) error {
	if err := validSeason(season); err != nil {
		return err
	}
	f.svc.Refresh(ctx, season)
	return nil
}

// CacheStats returns the cache snapshot.
func (f *Facade) CacheStats(_ context.Context) cache.Stats {
	return f.svc.CacheStats()
}

// LatestDrivers returns the most recent live entry list.
func (f *Facade) LatestDrivers(ctx context.Context) []model.Driver {
	return f.svc.LatestDrivers(ctx)
}

// Seasons summarises every season in [from, to].
func (f *Facade) Seasons(ctx context.Context, from, to int) ([]model.SeasonSummary, error) {
	switch {
	case from <= 0 || to <= 0:
		return nil, fmt.Errorf("%w: from=%d to=%d must be positive", ErrInvalidRange, from, to)
	case from > to:
		return nil, fmt.Errorf("%w: from=%d is after to=%d", ErrInvalidRange, from, to)
	case to-from+1 > f.maxSpan:
		return nil, fmt.Errorf("%w: %d seasons requested, at most %d", ErrInvalidRange, to-from+1, f.maxSpan)
	}
	f.log.Debug(ctx, "season range", logger.Int("from", from), logger.Int("to", to))
	return f.svc.Seasons(ctx, from, to), nil
}

// Stats returns service statistics for monitoring.
func (f *Facade) Stats() map[string]interface{} {
	return f.svc.GetStats()
}
