// Package ergast reads closed-season data from the Ergast-compatible
// historical results API (Jolpica).
package ergast

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/okian/pitwall/internal/adapters/source"
	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/internal/domain/sessiontime"
	"github.com/okian/pitwall/pkg/logger"
)

// DefaultBaseURL is the public Jolpica mirror of the Ergast API.
const DefaultBaseURL = "https://api.jolpi.ca/ergast/f1"

// Jolpica caps page size at 100, which covers any season.
const pageLimit = 100

// Envelope paths. The API nests everything under MRData; every level may
// be missing.
var (
	mrDataPath               = jp.MustParseString("$.MRData")
	racesPath                = jp.MustParseString("$.MRData.RaceTable.Races[*]")
	driverStandingsPath      = jp.MustParseString("$.MRData.StandingsTable.StandingsLists[0].DriverStandings[*]")
	constructorStandingsPath = jp.MustParseString("$.MRData.StandingsTable.StandingsLists[0].ConstructorStandings[*]")
	resultsPath              = jp.MustParseString("$.Results[*]")
	constructorsPath         = jp.MustParseString("$.Constructors[*].name")
)

// Item paths, applied to a single race, result or standings row.
var (
	seasonPath       = jp.MustParseString("$.season")
	roundPath        = jp.MustParseString("$.round")
	raceNamePath     = jp.MustParseString("$.raceName")
	circuitNamePath  = jp.MustParseString("$.Circuit.circuitName")
	localityPath     = jp.MustParseString("$.Circuit.Location.locality")
	countryPath      = jp.MustParseString("$.Circuit.Location.country")
	datePath         = jp.MustParseString("$.date")
	timePath         = jp.MustParseString("$.time")
	positionPath     = jp.MustParseString("$.position")
	positionTextPath = jp.MustParseString("$.positionText")
	pointsPath       = jp.MustParseString("$.points")
	winsPath         = jp.MustParseString("$.wins")
	statusPath       = jp.MustParseString("$.status")
	elapsedPath      = jp.MustParseString("$.Time.time")
	driverIDPath     = jp.MustParseString("$.Driver.driverId")
	driverCodePath   = jp.MustParseString("$.Driver.code")
	givenNamePath    = jp.MustParseString("$.Driver.givenName")
	familyNamePath   = jp.MustParseString("$.Driver.familyName")
	constructorPath  = jp.MustParseString("$.Constructor.name")
)

// Weekend timetable keys on a race object.
var sessionKeys = []struct {
	path jp.Expr
	name model.SessionName
}{
	{jp.MustParseString("$.FirstPractice"), model.FreePractice1},
	{jp.MustParseString("$.SecondPractice"), model.FreePractice2},
	{jp.MustParseString("$.ThirdPractice"), model.FreePractice3},
	{jp.MustParseString("$.SprintQualifying"), model.SprintQualifying},
	{jp.MustParseString("$.SprintShootout"), model.SprintQualifying},
	{jp.MustParseString("$.Sprint"), model.Sprint},
	{jp.MustParseString("$.Qualifying"), model.Qualifying},
}

// Client queries the historical results API.
type Client struct {
	baseURL string
	fetch   *source.Fetcher
	log     logger.Logger
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		log:     logger.Get().Named("ergast"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetch == nil {
		c.fetch = source.NewFetcher("ergast", source.WithAccept("application/json"), source.WithLogger(c.log))
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

// SeasonRaces returns the season calendar with each weekend's timetable.
func (c *Client) SeasonRaces(ctx context.Context, season int) ([]model.Race, error) {
	root, err := c.load(ctx, fmt.Sprintf("/%d.json?limit=%d", season, pageLimit))
	if err != nil {
		return nil, err
	}
	races := make([]model.Race, 0, 24)
	for _, item := range racesPath.Get(root) {
		race, ok := parseRace(item, season)
		if !ok {
			continue
		}
		races = append(races, race)
	}
	model.SortByRound(races)
	return races, nil
}

// DriverStandings returns the final (or latest) driver table.
func (c *Client) DriverStandings(ctx context.Context, season int) ([]model.StandingEntry, error) {
	root, err := c.load(ctx, fmt.Sprintf("/%d/driverStandings.json?limit=%d", season, pageLimit))
	if err != nil {
		return nil, err
	}
	rows := driverStandingsPath.Get(root)
	entries := make([]model.StandingEntry, 0, len(rows))
	for i, row := range rows {
		e := model.StandingEntry{
			Position: position(row, i),
			Name:     driverName(row),
			Code:     driverCode(row),
			Points:   number(row, pointsPath),
			Wins:     integer(row, winsPath),
		}
		if teams := constructorsPath.Get(row); len(teams) > 0 {
			e.Team, _ = teams[len(teams)-1].(string)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ConstructorStandings returns the final (or latest) constructor table.
func (c *Client) ConstructorStandings(ctx context.Context, season int) ([]model.StandingEntry, error) {
	root, err := c.load(ctx, fmt.Sprintf("/%d/constructorStandings.json?limit=%d", season, pageLimit))
	if err != nil {
		return nil, err
	}
	rows := constructorStandingsPath.Get(root)
	entries := make([]model.StandingEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, model.StandingEntry{
			Position: position(row, i),
			Name:     text(row, constructorPath),
			Points:   number(row, pointsPath),
			Wins:     integer(row, winsPath),
		})
	}
	return entries, nil
}

// RaceResults returns one round with its classification. A nil race with a
// nil error means the API has no results for that round yet.
func (c *Client) RaceResults(ctx context.Context, season, round int) (*model.Race, error) {
	root, err := c.load(ctx, fmt.Sprintf("/%d/%d/results.json?limit=%d", season, round, pageLimit))
	if err != nil {
		return nil, err
	}
	items := racesPath.Get(root)
	if len(items) == 0 {
		return nil, nil
	}
	race, ok := parseRace(items[0], season)
	if !ok {
		return nil, fmt.Errorf("%w: ergast: round %d has no round number", source.ErrMalformed, round)
	}
	for _, row := range resultsPath.Get(items[0]) {
		race.Results = append(race.Results, parseResult(row))
	}
	if len(race.Results) == 0 {
		return nil, nil
	}
	return &race, nil
}

func (c *Client) load(ctx context.Context, path string) (any, error) {
	body, err := c.fetch.Get(ctx, c.baseURL+path)
	if err != nil {
		return nil, err
	}
	root, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: ergast: %w", source.ErrMalformed, err)
	}
	if mrDataPath.First(root) == nil {
		return nil, fmt.Errorf("%w: ergast: no MRData envelope", source.ErrMalformed)
	}
	return root, nil
}

func parseRace(item any, season int) (model.Race, bool) {
	round := integer(item, roundPath)
	if round <= 0 {
		return model.Race{}, false
	}
	if s := integer(item, seasonPath); s > 0 {
		season = s
	}
	race := model.Race{
		Season:   season,
		Round:    round,
		Name:     text(item, raceNamePath),
		Circuit:  orDefault(text(item, circuitNamePath), model.UnknownCircuit),
		Location: orDefault(text(item, localityPath), model.UnknownLocation),
		Country:  text(item, countryPath),
		DateEnd:  text(item, datePath),
		Source:   model.SourceHistorical,
		Sessions: []model.Session{},
	}
	race.DateStart = race.DateEnd

	for _, sk := range sessionKeys {
		node := sk.path.First(item)
		if node == nil {
			continue
		}
		if s, ok := parseSession(node, sk.name); ok {
			race.Sessions = append(race.Sessions, s)
		}
	}
	if race.DateEnd != "" {
		if s, ok := parseSession(item, model.GrandPrix); ok {
			race.Sessions = append(race.Sessions, s)
		}
	}
	model.SortSessions(race.Sessions)
	if len(race.Sessions) > 0 && race.Sessions[0].Date != "" && race.Sessions[0].Date < race.DateStart {
		race.DateStart = race.Sessions[0].Date
	}
	return race, true
}

// parseSession reads {date, time} where time is "HH:MM:SSZ" in UTC.
func parseSession(node any, name model.SessionName) (model.Session, bool) {
	date := text(node, datePath)
	if date == "" {
		return model.Session{}, false
	}
	s := model.Session{Name: name, Date: date}
	clock := text(node, timePath)
	if clock == "" {
		return s, true
	}
	hour, minute, err := sessiontime.ParseClock(clock)
	if err != nil {
		return s, true
	}
	jst, err := sessiontime.UTCToJST(date, clock)
	if err != nil {
		return s, true
	}
	s.TimeUTC = fmt.Sprintf("%02d:%02d", hour, minute)
	s.TimeJST = jst.Clock
	return s, true
}

func parseResult(row any) model.RaceResult {
	posText := text(row, positionTextPath)
	pos, err := strconv.Atoi(posText)
	if err != nil || pos <= 0 {
		pos = 0
	}
	return model.RaceResult{
		Position:     pos,
		PositionText: posText,
		Driver:       driverName(row),
		Code:         driverCode(row),
		Team:         text(row, constructorPath),
		Points:       number(row, pointsPath),
		Time:         text(row, elapsedPath),
		Status:       text(row, statusPath),
	}
}

func driverName(row any) string {
	return strings.TrimSpace(text(row, givenNamePath) + " " + text(row, familyNamePath))
}

// driverCode falls back to the first three letters of the driver id for
// drivers from before three-letter codes existed.
func driverCode(row any) string {
	if code := text(row, driverCodePath); code != "" {
		return strings.ToUpper(code)
	}
	id := text(row, driverIDPath)
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	if len(id) > 3 {
		id = id[:3]
	}
	return strings.ToUpper(id)
}

func position(row any, index int) int {
	if p := integer(row, positionPath); p > 0 {
		return p
	}
	return index + 1
}

// text reads a scalar as a string. Ergast encodes numbers as strings, but
// mirrors are not consistent about it.
func text(node any, path jp.Expr) string {
	switch v := path.First(node).(type) {
	case string:
		return strings.TrimSpace(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func number(node any, path jp.Expr) float64 {
	f, err := strconv.ParseFloat(text(node, path), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func integer(node any, path jp.Expr) int {
	n, err := strconv.Atoi(text(node, path))
	if err != nil {
		return 0
	}
	return n
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
