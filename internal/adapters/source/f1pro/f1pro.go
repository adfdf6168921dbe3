// Package f1pro scrapes the schedule page of a Japanese F1 fan site. It is
// the last schedule fallback, after Wikipedia.
package f1pro

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"golang.org/x/net/html"

	"github.com/okian/pitwall/internal/adapters/source"
	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/internal/domain/sessiontime"
	"github.com/okian/pitwall/pkg/logger"
)

// DefaultURL is the fan site's season schedule page.
const DefaultURL = "https://f1pro.sub.jp/2625/"

// Scraper reads ".race-schedule-item" blocks. Session clocks on the page
// are JST.
type Scraper struct {
	url   string
	fetch *source.Fetcher
	log   logger.Logger
}

// New creates a Scraper.
func New(opts ...Option) *Scraper {
	s := &Scraper{url: DefaultURL, log: logger.Get().Named("f1pro")}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetch == nil {
		s.fetch = source.NewFetcher("f1pro", source.WithAccept("text/html"), source.WithLogger(s.log))
	}
	return s
}

// Schedule fetches the page and keeps the races of season.
func (s *Scraper) Schedule(ctx context.Context, season int) ([]model.Race, error) {
	body, err := s.fetch.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	races, err := ParseSchedule(bytes.NewReader(body), season)
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "fan site schedule parsed",
		logger.Int("season", season),
		logger.Int("races", len(races)))
	return races, nil
}

// ParseSchedule extracts the races of season. The page covers a single
// calendar, so items are attributed to a season by their start date and
// undated items are dropped. Rounds are numbered by start date.
func ParseSchedule(r io.Reader, season int) ([]model.Race, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: f1pro: %w", source.ErrMalformed, err)
	}
	items := source.FindAll(doc, source.ByClass("race-schedule-item"), true)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: f1pro: no schedule items", source.ErrMalformed)
	}

	races := make([]model.Race, 0, len(items))
	for _, item := range items {
		race, ok := parseItem(item, season)
		if !ok || race.DateStart == "" || !inSeason(race.DateStart, season) {
			continue
		}
		races = append(races, race)
	}
	slices.SortStableFunc(races, func(a, b model.Race) int { return cmp.Compare(a.DateStart, b.DateStart) })
	for i := range races {
		races[i].Round = i + 1
	}
	return races, nil
}

func inSeason(date string, season int) bool {
	if len(date) < 4 {
		return false
	}
	year, err := strconv.Atoi(date[:4])
	return err == nil && year == season
}

func parseItem(item *html.Node, season int) (model.Race, bool) {
	nameNode := source.First(item, source.ByClass("race-name"))
	dateNode := source.First(item, source.ByClass("race-date"))
	if nameNode == nil || dateNode == nil {
		return model.Race{}, false
	}

	race := model.Race{
		Season:    season,
		Name:      source.Text(nameNode),
		NameJA:    source.Normalize(source.Attr(nameNode, "data-ja")),
		Circuit:   model.UnknownCircuit,
		Location:  model.UnknownLocation,
		DateStart: source.ParseDate(source.Attr(dateNode, "data-start"), season),
		DateEnd:   source.ParseDate(source.Attr(dateNode, "data-end"), season),
		Source:    model.SourceScraped,
	}
	if race.Name == "" {
		race.Name = race.NameJA
	}
	if race.Name == "" {
		return model.Race{}, false
	}
	if race.DateStart == "" {
		race.DateStart = source.ParseDate(source.Text(dateNode), season)
	}
	if race.DateEnd == "" {
		race.DateEnd = race.DateStart
	}
	if t := source.Text(source.First(item, source.ByClass("circuit"))); t != "" {
		race.Circuit = t
	}
	if t := source.Text(source.First(item, source.ByClass("location"))); t != "" {
		race.Location = t
	}

	race.Sessions = parseSessions(item, season)
	return race, true
}

func parseSessions(item *html.Node, season int) []model.Session {
	sessions := make([]model.Session, 0, 5)
	seen := make(map[model.SessionName]bool)
	for _, block := range source.FindAll(item, source.ByClass("session-time"), true) {
		name, ok := model.ParseSessionName(source.Text(source.First(block, source.ByClass("session-name"))))
		if !ok || seen[name] {
			continue
		}
		clockNode := source.First(block, source.ByClass("session-time"))
		if clockNode == nil {
			clockNode = block
		}
		hour, minute, err := sessiontime.ParseClock(source.Text(clockNode))
		if err != nil {
			continue
		}
		date := source.ParseDate(source.Text(source.First(block, source.ByClass("session-date"))), season)
		utc, err := sessiontime.JSTToUTC(date, fmt.Sprintf("%02d:%02d", hour, minute))
		if err != nil {
			continue
		}
		seen[name] = true
		sessions = append(sessions, model.Session{
			Name:    name,
			Date:    utc.Date,
			TimeUTC: utc.Clock,
			TimeJST: fmt.Sprintf("%02d:%02d", hour%24, minute),
		})
	}
	model.SortSessions(sessions)
	return sessions
}
