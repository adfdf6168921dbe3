package wikipedia

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/okian/pitwall/internal/adapters/source"
	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/internal/domain/sessiontime"
)

// Rows wider than this are result tables, not timetables, unless the
// first cell names the session.
const maxTimetableCells = 4

// SessionScraper reads the "{season}年{grand prix}" article of one race.
type SessionScraper struct {
	config
}

// NewSessionScraper creates a SessionScraper.
func NewSessionScraper(opts ...Option) *SessionScraper {
	return &SessionScraper{config: newConfig("wikipedia-sessions", opts)}
}

// RaceURL returns the article URL for a race, using its Japanese name when
// known.
func (s *SessionScraper) RaceURL(season int, race model.Race) string {
	title := race.NameJA
	if title == "" {
		title = race.Name
	}
	title = strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	return s.baseURL + url.PathEscape(fmt.Sprintf("%d年%s", season, title))
}

// Sessions fetches the race article and returns its timetable. A page
// without a timetable yields an empty list.
func (s *SessionScraper) Sessions(ctx context.Context, season int, race model.Race) ([]model.Session, error) {
	if race.NameJA == "" && race.Name == "" {
		return nil, fmt.Errorf("%w: wikipedia: round %d has no name", source.ErrNotFound, race.Round)
	}
	body, err := s.fetch.Get(ctx, s.RaceURL(season, race))
	if err != nil {
		return nil, err
	}
	return ParseSessions(bytes.NewReader(body), season, race)
}

// ParseSessions extracts session rows from the wikitables of a race
// article. Clocks on these pages are JST and are converted to UTC; a row
// without its own date borrows the race date for the race session only.
func ParseSessions(r io.Reader, season int, race model.Race) ([]model.Session, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: wikipedia: %w", source.ErrMalformed, err)
	}

	seen := make(map[model.SessionName]bool)
	sessions := make([]model.Session, 0, 6)
	for _, table := range source.FindAll(doc, isWikitable, true) {
		for _, row := range source.Rows(table) {
			s, ok := parseSessionRow(source.Cells(row), season, race)
			if !ok || seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			sessions = append(sessions, s)
		}
	}
	model.SortSessions(sessions)
	return sessions, nil
}

func parseSessionRow(cells []*html.Node, season int, race model.Race) (model.Session, bool) {
	if len(cells) < 2 {
		return model.Session{}, false
	}
	texts := make([]string, len(cells))
	for i, c := range cells {
		texts[i] = source.Text(c)
	}
	rowText := strings.Join(texts, " ")

	name, ok := model.ParseSessionName(texts[0])
	if !ok && len(cells) <= maxTimetableCells {
		name, ok = model.ParseSessionName(rowText)
	}
	if !ok {
		return model.Session{}, false
	}

	hour, minute, err := sessiontime.ParseClock(texts[len(texts)-1])
	if err != nil {
		if hour, minute, err = sessiontime.ParseClock(rowText); err != nil {
			return model.Session{}, false
		}
	}
	localClock := fmt.Sprintf("%02d:%02d", hour, minute)

	localDate := source.ParseDate(rowText, season)
	if localDate == "" && name == model.GrandPrix {
		localDate = race.DateEnd
	}

	utc, err := sessiontime.JSTToUTC(localDate, localClock)
	if err != nil {
		return model.Session{}, false
	}
	return model.Session{
		Name:    name,
		Date:    utc.Date,
		TimeUTC: utc.Clock,
		TimeJST: fmt.Sprintf("%02d:%02d", hour%24, minute),
	}, true
}
