// Package standings derives championship tables from race results.
package standings

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"

	model "github.com/okian/pitwall/internal/domain/model"
)

type tally struct {
	name   string
	code   string
	team   string
	points float64
	wins   int
}

// accumulator sums points per key, remembering first-seen order.
type accumulator struct {
	order []string
	byKey map[string]*tally
}

func newAccumulator() *accumulator {
	return &accumulator{byKey: make(map[string]*tally)}
}

func (a *accumulator) add(key string, fill func(*tally), r model.RaceResult) {
	t, ok := a.byKey[key]
	if !ok {
		t = &tally{}
		a.byKey[key] = t
		a.order = append(a.order, key)
	}
	fill(t)
	t.points += r.Points
	if r.Position == 1 {
		t.wins++
	}
}

func (a *accumulator) table(driver bool) []model.StandingEntry {
	entries := lo.Map(a.order, func(key string, _ int) model.StandingEntry {
		t := a.byKey[key]
		e := model.StandingEntry{Name: t.name, Points: t.points, Wins: t.wins}
		if driver {
			e.Code = t.code
			e.Team = t.team
		}
		return e
	})
	// stable: equal points keep first-seen order
	slices.SortStableFunc(entries, func(x, y model.StandingEntry) int {
		return cmp.Compare(y.Points, x.Points)
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// driverKey groups by short code, falling back to the display name for
// results that lack one.
func driverKey(r model.RaceResult) string {
	if code := strings.TrimSpace(r.Code); code != "" {
		return strings.ToUpper(code)
	}
	return strings.TrimSpace(r.Driver)
}

// Drivers sums points per driver across every race, in race order. Retired
// and unclassified results still contribute their points.
func Drivers(races []model.Race) []model.StandingEntry {
	acc := newAccumulator()
	for _, race := range races {
		for _, r := range race.Results {
			key := driverKey(r)
			if key == "" {
				continue
			}
			acc.add(key, func(t *tally) {
				if t.name == "" {
					t.name = r.Driver
				}
				t.code = strings.ToUpper(r.Code)
				if r.Team != "" {
					t.team = r.Team
				}
			}, r)
		}
	}
	return acc.table(true)
}

// Constructors sums points per team across every race.
func Constructors(races []model.Race) []model.StandingEntry {
	acc := newAccumulator()
	for _, race := range races {
		for _, r := range race.Results {
			team := strings.TrimSpace(r.Team)
			if team == "" {
				continue
			}
			acc.add(team, func(t *tally) { t.name = team }, r)
		}
	}
	return acc.table(false)
}

// HasResults reports whether any race carries results to derive from.
func HasResults(races []model.Race) bool {
	return lo.SomeBy(races, func(r model.Race) bool { return len(r.Results) > 0 })
}

// PointsByDriver totals points per driver key. Used to cross-check a
// fetched table against the season's results.
func PointsByDriver(races []model.Race) map[string]float64 {
	totals := make(map[string]float64)
	for _, race := range races {
		for _, r := range race.Results {
			if key := driverKey(r); key != "" {
				totals[key] += r.Points
			}
		}
	}
	return totals
}

// NonIncreasing reports whether a table is sorted by points descending.
func NonIncreasing(entries []model.StandingEntry) bool {
	return slices.IsSortedFunc(entries, func(x, y model.StandingEntry) int {
		return cmp.Compare(y.Points, x.Points)
	})
}
