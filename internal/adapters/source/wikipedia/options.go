package wikipedia

import (
	"github.com/okian/pitwall/internal/adapters/source"
	"github.com/okian/pitwall/pkg/logger"
)

// Option applies a configuration option to a scraper.
type Option func(*config)

type config struct {
	baseURL string
	fetch   *source.Fetcher
	log     logger.Logger
}

// WithBaseURL sets the wiki article root, e.g. "https://ja.wikipedia.org/wiki/".
func WithBaseURL(u string) Option {
	return func(c *config) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f *source.Fetcher) Option {
	return func(c *config) {
		if f != nil {
			c.fetch = f
		}
	}
}

// WithLogger sets the scraper logger.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

func newConfig(name string, opts []Option) config {
	c := config{baseURL: DefaultBaseURL, log: logger.Get().Named(name)}
	for _, opt := range opts {
		opt(&c)
	}
	if c.fetch == nil {
		c.fetch = source.NewFetcher(name, source.WithAccept("text/html"), source.WithLogger(c.log))
	}
	return c
}
