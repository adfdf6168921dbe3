// Package source holds the HTTP plumbing shared by the upstream adapters.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "pitwall/1.0"
	// Season pages on Wikipedia are a few hundred KB; cap far above that.
	defaultMaxBodyBytes = 8 << 20
)

// Doer is the part of *http.Client the fetcher needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher performs GET requests against one upstream and classifies
// failures into the package's error taxonomy.
type Fetcher struct {
	name      string
	client    Doer
	userAgent string
	accept    string
	maxBody   int64
	log       logger.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c Doer) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithAccept sets the Accept header.
func WithAccept(accept string) FetcherOption {
	return func(f *Fetcher) {
		if accept != "" {
			f.accept = accept
		}
	}
}

// WithMaxBodyBytes caps the accepted response size.
func WithMaxBodyBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithLogger sets the fetcher logger.
func WithLogger(l logger.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// NewFetcher creates a fetcher labelled name in logs and metrics.
func NewFetcher(name string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		name:      name,
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		accept:    "*/*",
		maxBody:   defaultMaxBodyBytes,
		log:       logger.Get().Named(name),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the upstream label.
func (f *Fetcher) Name() string { return f.name }

// Get fetches url and returns the body of a 2xx response.
func (f *Fetcher) Get(ctx context.Context, url string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstreamRequest(f.name, Outcome(err))
		metrics.RecordUpstreamLatency(f.name, float64(time.Since(start).Milliseconds()))
		if err != nil {
			f.log.Warn(ctx, "upstream fetch failed", logger.String("url", url), logger.Error(err))
			return
		}
		f.log.Debug(ctx, "upstream fetch",
			logger.String("url", url),
			logger.Int("bytes", len(body)),
			logger.Duration("took", time.Since(start)))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", f.accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, f.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s: %s", ErrNotFound, f.name, url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s: status %d", ErrUnavailable, f.name, resp.StatusCode)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrUnavailable, f.name, err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w: %s: more than %d bytes", ErrTooLarge, f.name, f.maxBody)
	}
	return body, nil
}
