package f1pro

import (
	"github.com/okian/pitwall/internal/adapters/source"
	"github.com/okian/pitwall/pkg/logger"
)

// Option applies a configuration option to the Scraper.
type Option func(*Scraper)

// WithURL sets the schedule page address.
func WithURL(u string) Option {
	return func(s *Scraper) {
		if u != "" {
			s.url = u
		}
	}
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f *source.Fetcher) Option {
	return func(s *Scraper) {
		if f != nil {
			s.fetch = f
		}
	}
}

// WithLogger sets the scraper logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.log = l
		}
	}
}
