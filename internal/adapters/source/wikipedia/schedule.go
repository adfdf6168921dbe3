// Package wikipedia scrapes Japanese Wikipedia for season calendars and
// per-race session timetables.
package wikipedia

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/okian/pitwall/internal/adapters/source"
	model "github.com/okian/pitwall/internal/domain/model"
)

// DefaultBaseURL is the Japanese Wikipedia article root.
const DefaultBaseURL = "https://ja.wikipedia.org/wiki/"

type column int

const (
	colRound column = iota
	colGrandPrix
	colCircuit
	colLocation
	colDate
	colCount
)

// Header vocabulary, matched as substrings of the folded header text.
var headerVocabulary = [colCount][]string{
	colRound:     {"ラウンド", "Rd", "Round"},
	colGrandPrix: {"グランプリ", "GP", "Grand Prix"},
	colCircuit:   {"サーキット", "コース", "Circuit"},
	colLocation:  {"開催地", "所在地", "場所", "Location"},
	colDate:      {"開催日", "決勝日", "日付", "日程", "Date"},
}

var (
	digitsPattern    = regexp.MustCompile(`\d+`)
	asciiOnlyPattern = regexp.MustCompile(`^[\x20-\x7E]+$`)
)

// ScheduleScraper reads the "{season}年のF1世界選手権" article.
type ScheduleScraper struct {
	config
}

// NewScheduleScraper creates a ScheduleScraper.
func NewScheduleScraper(opts ...Option) *ScheduleScraper {
	return &ScheduleScraper{config: newConfig("wikipedia-schedule", opts)}
}

// SeasonURL returns the article URL for a season.
func (s *ScheduleScraper) SeasonURL(season int) string {
	return s.baseURL + url.PathEscape(fmt.Sprintf("%d年のF1世界選手権", season))
}

// Schedule fetches and parses the season article.
func (s *ScheduleScraper) Schedule(ctx context.Context, season int) ([]model.Race, error) {
	body, err := s.fetch.Get(ctx, s.SeasonURL(season))
	if err != nil {
		return nil, err
	}
	return ParseSchedule(bytes.NewReader(body), season)
}

type scheduleTable struct {
	node    *html.Node
	columns [colCount]int
	score   int
}

// ParseSchedule extracts one Race per round from the wikitables of a season
// article. Tables are recognised by header text; a table needs at least a
// round and a grand prix column. Missing columns leave the sentinel values.
func ParseSchedule(r io.Reader, season int) ([]model.Race, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: wikipedia: %w", source.ErrMalformed, err)
	}

	var tables []scheduleTable
	for _, t := range source.FindAll(doc, isWikitable, true) {
		st, ok := classifyTable(t)
		if ok {
			tables = append(tables, st)
		}
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: wikipedia: no schedule table for %d", source.ErrMalformed, season)
	}
	// richest table first; later tables only fill rounds the first lacked
	slices.SortStableFunc(tables, func(a, b scheduleTable) int { return cmp.Compare(b.score, a.score) })

	seen := make(map[int]bool)
	races := make([]model.Race, 0, 24)
	for _, t := range tables {
		for _, row := range source.Rows(t.node) {
			race, ok := parseScheduleRow(source.Cells(row), t.columns, season)
			if !ok || seen[race.Round] {
				continue
			}
			seen[race.Round] = true
			races = append(races, race)
		}
	}
	model.SortByRound(races)
	return races, nil
}

func isWikitable(n *html.Node) bool {
	return n.DataAtom == atom.Table && source.HasClass(n, "wikitable")
}

func classifyTable(table *html.Node) (scheduleTable, bool) {
	st := scheduleTable{node: table}
	for i := range st.columns {
		st.columns[i] = -1
	}
	var header []*html.Node
	for _, row := range source.Rows(table) {
		cells := source.Cells(row)
		if len(cells) > 0 && lo.EveryBy(cells, func(c *html.Node) bool { return c.DataAtom == atom.Th }) {
			header = cells
			break
		}
	}
	for j, cell := range header {
		text := source.Text(cell)
		for col := column(0); col < colCount; col++ {
			if st.columns[col] >= 0 {
				continue
			}
			if matchesAny(text, headerVocabulary[col]) {
				st.columns[col] = j
				st.score++
				break
			}
		}
	}
	return st, st.columns[colRound] >= 0 && st.columns[colGrandPrix] >= 0
}

func matchesAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func parseScheduleRow(cells []*html.Node, cols [colCount]int, season int) (model.Race, bool) {
	if len(cells) < 2 {
		return model.Race{}, false
	}
	at := func(col column) *html.Node {
		if i := cols[col]; i >= 0 && i < len(cells) {
			return cells[i]
		}
		return nil
	}

	roundCell := at(colRound)
	if roundCell == nil {
		roundCell = cells[0]
	}
	roundText := source.Text(roundCell)
	m := digitsPattern.FindString(roundText)
	if m == "" {
		return model.Race{}, false
	}
	round, err := strconv.Atoi(m)
	if err != nil || round <= 0 {
		return model.Race{}, false
	}

	gpCell := at(colGrandPrix)
	if gpCell == nil || !looksLikeGrandPrix(source.Text(gpCell)) {
		gpCell = findCell(cells, looksLikeGrandPrix)
	}
	if gpCell == nil {
		return model.Race{}, false
	}
	nameJA := source.Text(gpCell)

	race := model.Race{
		Season:   season,
		Round:    round,
		Name:     englishName(gpCell, nameJA),
		NameJA:   nameJA,
		Circuit:  model.UnknownCircuit,
		Location: model.UnknownLocation,
		Source:   model.SourceScraped,
		Sessions: []model.Session{},
	}

	circuitCell := at(colCircuit)
	if circuitCell == nil {
		circuitCell = findCell(cells, func(t string) bool {
			return strings.Contains(t, "サーキット") || strings.Contains(t, "Circuit")
		})
	}
	if t := source.Text(circuitCell); t != "" {
		race.Circuit = t
	}

	if t := source.Text(at(colLocation)); t != "" {
		race.Location = t
	}

	dateCell := at(colDate)
	if dateCell == nil || source.ParseDate(source.Text(dateCell), season) == "" {
		dateCell = findCell(cells, func(t string) bool { return source.ParseDate(t, season) != "" })
	}
	if d := source.ParseDate(source.Text(dateCell), season); d != "" {
		race.DateStart, race.DateEnd = d, d
	}
	return race, true
}

func looksLikeGrandPrix(text string) bool {
	return strings.Contains(text, "グランプリ") || strings.Contains(text, "GP") || strings.Contains(text, "Grand Prix")
}

func findCell(cells []*html.Node, pred func(string) bool) *html.Node {
	for _, c := range cells {
		if pred(source.Text(c)) {
			return c
		}
	}
	return nil
}

// englishName prefers an ASCII link title in the grand prix cell; Japanese
// articles usually only have Japanese titles, in which case the Japanese
// name is used.
func englishName(cell *html.Node, fallback string) string {
	for _, a := range source.FindAll(cell, source.ByAtom(atom.A), true) {
		title := strings.TrimSpace(source.Attr(a, "title"))
		if title != "" && asciiOnlyPattern.MatchString(title) {
			return title
		}
	}
	return fallback
}
