package probe

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"

	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/internal/domain/standings"
)

// pointsTolerance absorbs float noise from half-point races.
const pointsTolerance = 1e-6

// Verify checks one season's served data and returns every violation found.
func Verify(season int, races []model.Race, drivers, constructors []model.StandingEntry) []string {
	var out []string
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf("season %d: ", season)+fmt.Sprintf(format, args...))
	}

	if !model.UniqueRounds(races) {
		add("duplicate round numbers")
	}
	for _, r := range races {
		if r.Season != season {
			add("round %d reports season %d", r.Round, r.Season)
		}
		if !model.UniquePositions(r.Results) {
			add("round %d has duplicate classified positions", r.Round)
		}
	}
	if !model.ChronologicalRounds(races) {
		add("rounds are not in date order")
	}
	if !standings.NonIncreasing(drivers) {
		add("driver standings are not sorted by points")
	}
	if !standings.NonIncreasing(constructors) {
		add("constructor standings are not sorted by points")
	}

	if complete(races) {
		out = append(out, crossCheck(season, races, drivers)...)
	}
	return out
}

// complete reports whether every round carries results. Partial seasons
// are skipped because the fetched table may already include rounds the
// results do not.
func complete(races []model.Race) bool {
	return len(races) > 0 && lo.EveryBy(races, func(r model.Race) bool { return len(r.Results) > 0 })
}

// crossCheck compares each standings row against the points summed from
// race results.
func crossCheck(season int, races []model.Race, drivers []model.StandingEntry) []string {
	totals := standings.PointsByDriver(races)
	var out []string
	for _, d := range drivers {
		key := strings.ToUpper(strings.TrimSpace(d.Code))
		if key == "" {
			key = strings.TrimSpace(d.Name)
		}
		got, ok := totals[key]
		if !ok {
			if d.Points != 0 {
				out = append(out, fmt.Sprintf("season %d: %s has %.1f points but no results", season, key, d.Points))
			}
			continue
		}
		if math.Abs(got-d.Points) > pointsTolerance {
			out = append(out, fmt.Sprintf("season %d: %s standings %.1f, results sum %.1f", season, key, d.Points, got))
		}
	}
	return out
}
