// Package probe walks a range of seasons through a running pitwall server
// and checks the served data for consistency.
package probe

import (
	"fmt"
	"time"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL     string        // Base URL of the service
	From        int           // First season, inclusive
	To          int           // Last season, inclusive
	Concurrency int           // Seasons probed together
	Delay       time.Duration // Pause between groups of seasons
	Timeout     time.Duration // HTTP request timeout
	Verbose     bool          // Log every season, not only failures
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: url must not be empty", ErrInvalidConfig)
	case c.From <= 0 || c.To <= 0:
		return fmt.Errorf("%w: seasons must be positive", ErrInvalidConfig)
	case c.From > c.To:
		return fmt.Errorf("%w: from %d is after to %d", ErrInvalidConfig, c.From, c.To)
	case c.Concurrency <= 0:
		return fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}

// SeasonReport is the outcome for one season.
type SeasonReport struct {
	Season     int
	Races      int
	Results    int // races carrying results
	Drivers    int
	Violations []string
	Err        error // transport failure; checks were not run
}

// OK reports whether the season was fetched and passed every check.
func (r SeasonReport) OK() bool { return r.Err == nil && len(r.Violations) == 0 }

// Report holds the outcome of a probe run.
type Report struct {
	Seasons   []SeasonReport
	StartTime time.Time
	Duration  time.Duration
}

// Failed counts seasons that did not pass.
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Seasons {
		if !s.OK() {
			n++
		}
	}
	return n
}
