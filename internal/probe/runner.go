package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/pitwall/internal/adapters/batch"
	"github.com/okian/pitwall/pkg/logger"
)

// Run probes every season in the configured range. It returns the report
// together with ErrViolations when any season failed.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("probe")
	report := &Report{StartTime: time.Now()}

	log.Info(ctx, "starting season probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("from", cfg.From),
		logger.Int("to", cfg.To),
		logger.Int("concurrency", cfg.Concurrency))

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return nil, err
	}

	n := cfg.To - cfg.From + 1
	report.Seasons = make([]SeasonReport, n)
	runner := batch.New(
		batch.WithName("probe"),
		batch.WithSize(cfg.Concurrency),
		batch.WithDelay(cfg.Delay),
		batch.WithLogger(log),
	)
	// Per-season failures are kept in the report.
	_ = runner.Run(ctx, n, func(ctx context.Context, i int) error {
		report.Seasons[i] = probeSeason(ctx, client, cfg.From+i)
		return report.Seasons[i].Err
	})
	report.Duration = time.Since(report.StartTime)

	for _, s := range report.Seasons {
		switch {
		case s.Err != nil:
			log.Error(ctx, "season unreachable", logger.Int("season", s.Season), logger.Error(s.Err))
		case len(s.Violations) > 0:
			for _, v := range s.Violations {
				log.Warn(ctx, "violation", logger.Int("season", s.Season), logger.String("detail", v))
			}
		case cfg.Verbose:
			log.Info(ctx, "season ok",
				logger.Int("season", s.Season),
				logger.Int("races", s.Races),
				logger.Int("withResults", s.Results),
				logger.Int("drivers", s.Drivers))
		}
	}
	log.Info(ctx, "season probe finished",
		logger.Int("seasons", n),
		logger.Int("failed", report.Failed()),
		logger.Duration("duration", report.Duration))

	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	if failed := report.Failed(); failed > 0 {
		return report, fmt.Errorf("%w: %d of %d seasons", ErrViolations, failed, n)
	}
	return report, nil
}

func probeSeason(ctx context.Context, c *Client, season int) SeasonReport {
	rep := SeasonReport{Season: season}
	races, err := c.Races(ctx, season)
	if err != nil {
		rep.Err = err
		return rep
	}
	drivers, err := c.DriverStandings(ctx, season)
	if err != nil {
		rep.Err = err
		return rep
	}
	constructors, err := c.ConstructorStandings(ctx, season)
	if err != nil {
		rep.Err = err
		return rep
	}

	rep.Races = len(races)
	rep.Drivers = len(drivers)
	for _, r := range races {
		if len(r.Results) > 0 {
			rep.Results++
		}
	}
	if len(races) == 0 && len(drivers) > 0 {
		rep.Violations = append(rep.Violations, fmt.Sprintf("season %d: standings without a calendar", season))
	}
	rep.Violations = append(rep.Violations, Verify(season, races, drivers, constructors)...)
	return rep
}
