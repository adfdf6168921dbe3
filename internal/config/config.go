// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - Loader errors wrap this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Upstream endpoints.
	HistoricalBaseURL string `koanf:"historical_base_url"`
	LiveBaseURL       string `koanf:"live_base_url"`
	WikipediaBaseURL  string `koanf:"wikipedia_base_url"`
	FanSiteURL        string `koanf:"fan_site_url"`

	// UserAgent is sent on every upstream request; Wikipedia rejects blank agents.
	UserAgent string `koanf:"user_agent"`

	// HTTPTimeoutMS bounds a single upstream request.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// Cache lifetimes.
	ClosedSeasonTTLMinutes  int `koanf:"closed_season_ttl_minutes"`
	CurrentSeasonTTLMinutes int `koanf:"current_season_ttl_minutes"`
	DriversTTLMinutes       int `koanf:"drivers_ttl_minutes"`
	SweepIntervalMinutes    int `koanf:"sweep_interval_minutes"`

	// BatchSize is the concurrency window for per-round and per-season fan-out.
	BatchSize          int `koanf:"batch_size"`
	BatchDelayMS       int `koanf:"batch_delay_ms"`
	SeasonBatchDelayMS int `koanf:"season_batch_delay_ms"`

	// LastClosedSeason is the newest season served from the historical API.
	// Zero means the year before the current one.
	LastClosedSeason int `koanf:"last_closed_season"`

	// ScrapeSeasons are always assembled from scraped pages.
	ScrapeSeasons []int `koanf:"scrape_seasons"`

	// MaxSeasonSpan caps GET /api/seasons?from=&to=.
	MaxSeasonSpan int `koanf:"max_season_span"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		HistoricalBaseURL:       "https://api.jolpi.ca/ergast/f1",
		LiveBaseURL:             "https://api.openf1.org/v1",
		WikipediaBaseURL:        "https://ja.wikipedia.org/wiki/",
		FanSiteURL:              "https://f1pro.sub.jp/2625/",
		UserAgent:               "pitwall/1.0 (+https://github.com/okian/pitwall)",
		HTTPTimeoutMS:           10_000,
		ClosedSeasonTTLMinutes:  24 * 60,
		CurrentSeasonTTLMinutes: 5,
		DriversTTLMinutes:       60,
		SweepIntervalMinutes:    10,
		BatchSize:               5,
		BatchDelayMS:            500,
		SeasonBatchDelayMS:      3_000,
		LastClosedSeason:        0,
		ScrapeSeasons:           nil,
		MaxSeasonSpan:           30,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	case c.ClosedSeasonTTLMinutes <= 0, c.CurrentSeasonTTLMinutes <= 0, c.DriversTTLMinutes <= 0:
		return fmt.Errorf("%w: cache TTLs must be positive", ErrInvalidConfig)
	case c.HTTPTimeoutMS <= 0:
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	case c.MaxSeasonSpan <= 0:
		return fmt.Errorf("%w: max_season_span must be positive", ErrInvalidConfig)
	case c.BatchDelayMS < 0, c.SeasonBatchDelayMS < 0, c.SweepIntervalMinutes < 0:
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ClosedSeasonTTL is the lifetime of entries for seasons that no longer change.
func (c *Config) ClosedSeasonTTL() time.Duration {
	return time.Duration(c.ClosedSeasonTTLMinutes) * time.Minute
}

// CurrentSeasonTTL is the lifetime of entries for the running season.
func (c *Config) CurrentSeasonTTL() time.Duration {
	return time.Duration(c.CurrentSeasonTTLMinutes) * time.Minute
}

func (c *Config) DriversTTL() time.Duration {
	return time.Duration(c.DriversTTLMinutes) * time.Minute
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}

func (c *Config) SeasonBatchDelay() time.Duration {
	return time.Duration(c.SeasonBatchDelayMS) * time.Millisecond
}

// ResolveLastClosedSeason returns LastClosedSeason, or the year before now
// when it is unset.
func (c *Config) ResolveLastClosedSeason(now time.Time) int {
	if c.LastClosedSeason > 0 {
		return c.LastClosedSeason
	}
	return now.Year() - 1
}
