package ergast

import (
	"github.com/okian/pitwall/internal/adapters/source"
	"github.com/okian/pitwall/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL points the client at another Ergast-compatible API.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f *source.Fetcher) Option {
	return func(c *Client) {
		if f != nil {
			c.fetch = f
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
