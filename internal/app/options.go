package service

import (
	"time"

	"github.com/okian/pitwall/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCache injects the store. Without it Start creates and owns one.
func WithCache(c Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithHistorical sets the closed-season results source.
func WithHistorical(h HistoricalSource) Option {
	return func(s *Service) {
		if h != nil {
			s.historical = h
		}
	}
}

// WithLive sets the current-season source.
func WithLive(l LiveSource) Option {
	return func(s *Service) {
		if l != nil {
			s.live = l
		}
	}
}

// WithScheduleSources sets the schedule scrapers, consulted in order until
// one returns races.
func WithScheduleSources(sources ...ScheduleSource) Option {
	return func(s *Service) {
		s.schedules = append(s.schedules[:0], sources...)
	}
}

// WithSessionSource sets the per-race timetable scraper.
func WithSessionSource(src SessionSource) Option {
	return func(s *Service) {
		if src != nil {
			s.sessions = src
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTTLs sets the closed-season, current-season and latest-drivers
// lifetimes. Non-positive values keep the defaults.
func WithTTLs(closed, current, drivers time.Duration) Option {
	return func(s *Service) {
		if closed > 0 {
			s.closedTTL = closed
		}
		if current > 0 {
			s.currentTTL = current
		}
		if drivers > 0 {
			s.driversTTL = drivers
		}
	}
}

// WithLastClosedSeason pins the newest season served from the historical
// API. Zero means the year before the current one.
func WithLastClosedSeason(season int) Option {
	return func(s *Service) {
		if season >= 0 {
			s.lastClosed = season
		}
	}
}

// WithScrapeSeasons lists seasons always assembled from scraped pages.
func WithScrapeSeasons(seasons ...int) Option {
	return func(s *Service) {
		for _, season := range seasons {
			s.scrapeSeasons[season] = true
		}
	}
}

// WithBatchSize sets the concurrency window for round and season fan-out.
func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithBatchDelays sets the pause between round batches and between season
// batches.
func WithBatchDelays(rounds, seasons time.Duration) Option {
	return func(s *Service) {
		if rounds >= 0 {
			s.roundDelay = rounds
		}
		if seasons >= 0 {
			s.seasonDelay = seasons
		}
	}
}

// WithSweepInterval sets the sweep cadence of a store created by Start.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.sweepInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
