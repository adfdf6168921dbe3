// Package openf1 reads the running season from the OpenF1 live timing API.
// Meetings and sessions arrive as separate flat arrays and are joined on
// meeting_key.
package openf1

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/okian/pitwall/internal/adapters/source"
	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/internal/domain/sessiontime"
	"github.com/okian/pitwall/pkg/logger"
)

// DefaultBaseURL is the public OpenF1 API.
const DefaultBaseURL = "https://api.openf1.org/v1"

type meeting struct {
	MeetingKey          int    `json:"meeting_key"`
	MeetingName         string `json:"meeting_name"`
	MeetingOfficialName string `json:"meeting_official_name"`
	Location            string `json:"location"`
	CountryName         string `json:"country_name"`
	CircuitShortName    string `json:"circuit_short_name"`
	DateStart           string `json:"date_start"`
	Year                int    `json:"year"`
}

type session struct {
	SessionKey  int    `json:"session_key"`
	MeetingKey  int    `json:"meeting_key"`
	SessionName string `json:"session_name"`
	SessionType string `json:"session_type"`
	DateStart   string `json:"date_start"`
	DateEnd     string `json:"date_end"`
	GMTOffset   string `json:"gmt_offset"`
}

type driver struct {
	DriverNumber  int    `json:"driver_number"`
	BroadcastName string `json:"broadcast_name"`
	FullName      string `json:"full_name"`
	NameAcronym   string `json:"name_acronym"`
	TeamName      string `json:"team_name"`
	TeamColour    string `json:"team_colour"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	HeadshotURL   string `json:"headshot_url"`
	CountryCode   string `json:"country_code"`
}

// Client queries the live timing API.
type Client struct {
	baseURL string
	fetch   *source.Fetcher
	now     func() time.Time
	log     logger.Logger
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		now:     time.Now,
		log:     logger.Get().Named("openf1"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetch == nil {
		c.fetch = source.NewFetcher("openf1", source.WithAccept("application/json"), source.WithLogger(c.log))
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

// SeasonRaces joins the year's meetings with their sessions. Testing
// meetings are dropped and the rest are numbered 1..N by start date, since
// the API carries no round numbers. If the sessions request fails the
// calendar is still returned without timetables.
func (c *Client) SeasonRaces(ctx context.Context, year int) ([]model.Race, error) {
	var meetings []meeting
	if err := c.getJSON(ctx, "/meetings?year="+strconv.Itoa(year), &meetings); err != nil {
		return nil, err
	}

	var sessions []session
	if err := c.getJSON(ctx, "/sessions?year="+strconv.Itoa(year), &sessions); err != nil {
		c.log.Warn(ctx, "sessions unavailable, returning calendar only",
			logger.Int("season", year), logger.Error(err))
		sessions = nil
	}
	byMeeting := lo.GroupBy(sessions, func(s session) int { return s.MeetingKey })

	meetings = lo.Filter(meetings, func(m meeting, _ int) bool { return !isTesting(m) })
	slices.SortStableFunc(meetings, func(a, b meeting) int { return cmp.Compare(a.DateStart, b.DateStart) })

	races := make([]model.Race, 0, len(meetings))
	for i, m := range meetings {
		races = append(races, buildRace(year, i+1, m, byMeeting[m.MeetingKey]))
	}
	return races, nil
}

// LatestDrivers returns the entry list of the most recent session of year
// that has already started. No started session yields nil without error.
func (c *Client) LatestDrivers(ctx context.Context, year int) ([]model.Driver, error) {
	var sessions []session
	if err := c.getJSON(ctx, "/sessions?year="+strconv.Itoa(year), &sessions); err != nil {
		return nil, err
	}
	now := c.now()
	var (
		latest     session
		latestTime time.Time
	)
	for _, s := range sessions {
		t, err := time.Parse(time.RFC3339, s.DateStart)
		if err != nil || t.After(now) {
			continue
		}
		if t.After(latestTime) {
			latest, latestTime = s, t
		}
	}
	if latestTime.IsZero() {
		return nil, nil
	}

	var rows []driver
	q := url.Values{"session_key": {strconv.Itoa(latest.SessionKey)}}
	if err := c.getJSON(ctx, "/drivers?"+q.Encode(), &rows); err != nil {
		return nil, err
	}
	rows = lo.UniqBy(rows, func(d driver) int { return d.DriverNumber })
	drivers := lo.Map(rows, func(d driver, _ int) model.Driver {
		return model.Driver{
			Number:        d.DriverNumber,
			FullName:      d.FullName,
			BroadcastName: d.BroadcastName,
			FirstName:     d.FirstName,
			LastName:      d.LastName,
			Code:          strings.ToUpper(d.NameAcronym),
			Team:          d.TeamName,
			TeamColour:    d.TeamColour,
			CountryCode:   d.CountryCode,
			HeadshotURL:   d.HeadshotURL,
		}
	})
	slices.SortFunc(drivers, func(a, b model.Driver) int { return cmp.Compare(a.Number, b.Number) })
	return drivers, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.fetch.Get(ctx, c.baseURL+path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: openf1 %s: %w", source.ErrMalformed, path, err)
	}
	return nil
}

func isTesting(m meeting) bool {
	name := strings.ToLower(m.MeetingName + " " + m.MeetingOfficialName)
	return strings.Contains(name, "testing")
}

func buildRace(year, round int, m meeting, sessions []session) model.Race {
	race := model.Race{
		Season:   year,
		Round:    round,
		Name:     m.MeetingName,
		Circuit:  lo.Ternary(m.CircuitShortName != "", m.CircuitShortName, model.UnknownCircuit),
		Location: lo.Ternary(m.Location != "", m.Location, model.UnknownLocation),
		Country:  m.CountryName,
		Source:   model.SourceLive,
		Sessions: make([]model.Session, 0, len(sessions)),
	}
	if t, err := time.Parse(time.RFC3339, m.DateStart); err == nil {
		utc, _ := sessiontime.FromTime(t)
		race.DateStart, race.DateEnd = utc.Date, utc.Date
	}

	for _, s := range sessions {
		name, ok := model.ParseSessionName(s.SessionName)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339, s.DateStart)
		if err != nil {
			race.Sessions = append(race.Sessions, model.Session{Name: name})
			continue
		}
		utc, jst := sessiontime.FromTime(t)
		race.Sessions = append(race.Sessions, model.Session{
			Name:    name,
			Date:    utc.Date,
			TimeUTC: utc.Clock,
			TimeJST: jst.Clock,
		})
	}
	model.SortSessions(race.Sessions)

	for _, s := range race.Sessions {
		if s.Date == "" {
			continue
		}
		if race.DateStart == "" || s.Date < race.DateStart {
			race.DateStart = s.Date
		}
		if s.Date > race.DateEnd {
			race.DateEnd = s.Date
		}
	}
	return race
}
