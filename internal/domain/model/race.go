// Package model contains the season-keyed domain shapes shared by every
// source adapter, the reconciliation service and the HTTP layer.
package model

import (
	"cmp"
	"slices"
)

// Sentinels for fields a scraped page did not provide.
const (
	UnknownCircuit  = "Unknown Circuit"
	UnknownLocation = "Unknown Location"
)

// Source records which upstream produced a race list.
type Source string

const (
	SourceHistorical Source = "historical"
	SourceLive       Source = "live"
	SourceScraped    Source = "scraped"
)

// Race is one round of a season. Dates are "YYYY-MM-DD"; an empty date
// means the source did not know it.
type Race struct {
	Season    int          `json:"season"`
	Round     int          `json:"round"`
	Name      string       `json:"name"`
	NameJA    string       `json:"name_ja,omitempty"`
	Circuit   string       `json:"circuit"`
	Location  string       `json:"location"`
	Country   string       `json:"country,omitempty"`
	DateStart string       `json:"date_start"`
	DateEnd   string       `json:"date_end"`
	Sessions  []Session    `json:"sessions"`
	Results   []RaceResult `json:"results,omitempty"`
	Source    Source       `json:"source"`
}

// RaceResult is one classified or unclassified finisher.
type RaceResult struct {
	// Position is 1..N for classified drivers and 0 for retired, DNS or DNF.
	Position     int     `json:"position"`
	PositionText string  `json:"position_text"`
	Driver       string  `json:"driver"`
	Code         string  `json:"code"`
	Team         string  `json:"team"`
	Points       float64 `json:"points"`
	Time         string  `json:"time,omitempty"`
	Status       string  `json:"status"`
}

// HasPosition reports whether the result carries a numeric classification.
func (r RaceResult) HasPosition() bool { return r.Position > 0 }

// StandingEntry is a row of a driver or constructor table.
type StandingEntry struct {
	Position int     `json:"position"`
	Name     string  `json:"name"`
	Code     string  `json:"code,omitempty"`
	Team     string  `json:"team,omitempty"`
	Points   float64 `json:"points"`
	Wins     int     `json:"wins"`
}

// Driver is an entry of the latest live session's entry list.
type Driver struct {
	Number        int    `json:"number"`
	FullName      string `json:"full_name"`
	BroadcastName string `json:"broadcast_name,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Code          string `json:"code"`
	Team          string `json:"team"`
	TeamColour    string `json:"team_colour,omitempty"`
	CountryCode   string `json:"country_code,omitempty"`
	HeadshotURL   string `json:"headshot_url,omitempty"`
}

// SeasonSummary is one element of a season range query.
type SeasonSummary struct {
	Season int    `json:"season"`
	Races  []Race `json:"races"`
	Count  int    `json:"count"`
}

// SortByRound orders races by round in place.
func SortByRound(races []Race) {
	slices.SortStableFunc(races, func(a, b Race) int { return cmp.Compare(a.Round, b.Round) })
}

// UniqueRounds reports whether no two races share a round number.
func UniqueRounds(races []Race) bool {
	seen := make(map[int]struct{}, len(races))
	for _, r := range races {
		if _, ok := seen[r.Round]; ok {
			return false
		}
		seen[r.Round] = struct{}{}
	}
	return true
}

// UniquePositions reports whether classified results have distinct
// positions. Unclassified results are ignored.
func UniquePositions(results []RaceResult) bool {
	seen := make(map[int]struct{}, len(results))
	for _, r := range results {
		if !r.HasPosition() {
			continue
		}
		if _, ok := seen[r.Position]; ok {
			return false
		}
		seen[r.Position] = struct{}{}
	}
	return true
}

// ChronologicalRounds reports whether round order agrees with start dates
// for every pair of races that both carry a date.
func ChronologicalRounds(races []Race) bool {
	sorted := slices.Clone(races)
	SortByRound(sorted)
	last := ""
	for _, r := range sorted {
		if r.DateStart == "" {
			continue
		}
		if last != "" && r.DateStart < last {
			return false
		}
		last = r.DateStart
	}
	return true
}
