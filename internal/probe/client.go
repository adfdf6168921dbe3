package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/okian/pitwall/internal/adapters/source"
	model "github.com/okian/pitwall/internal/domain/model"
)

// Client reads the pitwall HTTP API.
type Client struct {
	baseURL string
	fetch   *source.Fetcher
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetch: source.NewFetcher("pitwall",
			source.WithTimeout(timeout),
			source.WithUserAgent("season-probe"),
			source.WithAccept("application/json"),
		),
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/healthz", &body); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, body.Status)
	}
	return nil
}

func (c *Client) Races(ctx context.Context, season int) ([]model.Race, error) {
	var races []model.Race
	err := c.get(ctx, fmt.Sprintf("/api/seasons/%d/races", season), &races)
	return races, err
}

func (c *Client) DriverStandings(ctx context.Context, season int) ([]model.StandingEntry, error) {
	var entries []model.StandingEntry
	err := c.get(ctx, fmt.Sprintf("/api/seasons/%d/standings/drivers", season), &entries)
	return entries, err
}

func (c *Client) ConstructorStandings(ctx context.Context, season int) ([]model.StandingEntry, error) {
	var entries []model.StandingEntry
	err := c.get(ctx, fmt.Sprintf("/api/seasons/%d/standings/constructors", season), &entries)
	return entries, err
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	body, err := c.fetch.Get(ctx, c.baseURL+path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return nil
}
