package standings_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

func season() []model.Race {
	return []model.Race{
		{Round: 1, Results: []model.RaceResult{
			{Position: 1, Driver: "Max Verstappen", Code: "VER", Team: "Red Bull", Points: 25},
			{Position: 2, Driver: "Sergio Pérez", Code: "PER", Team: "Red Bull", Points: 18},
			{Position: 3, Driver: "Fernando Alonso", Code: "ALO", Team: "Aston Martin", Points: 15},
			{Position: 0, PositionText: "R", Driver: "Charles Leclerc", Code: "LEC", Team: "Ferrari", Points: 0, Status: "Retired"},
		}},
		{Round: 2, Results: []model.RaceResult{
			{Position: 1, Driver: "Sergio Pérez", Code: "PER", Team: "Red Bull", Points: 25},
			{Position: 2, Driver: "Max Verstappen", Code: "VER", Team: "Red Bull", Points: 19},
			{Position: 3, Driver: "Fernando Alonso", Code: "ALO", Team: "Aston Martin", Points: 15},
			{Position: 0, PositionText: "R", Driver: "Charles Leclerc", Code: "LEC", Team: "Ferrari", Points: 0.5, Status: "Retired"},
		}},
	}
}

func TestDrivers(t *testing.T) {
	Convey("Given a season with a retired driver", t, func() {
		table := standings.Drivers(season())

		Convey("Then points are summed per driver code", func() {
			want := []model.StandingEntry{
				{Position: 1, Name: "Max Verstappen", Code: "VER", Team: "Red Bull", Points: 44, Wins: 1},
				{Position: 2, Name: "Sergio Pérez", Code: "PER", Team: "Red Bull", Points: 43, Wins: 1},
				{Position: 3, Name: "Fernando Alonso", Code: "ALO", Team: "Aston Martin", Points: 30},
				{Position: 4, Name: "Charles Leclerc", Code: "LEC", Team: "Ferrari", Points: 0.5},
			}
			So(cmp.Diff(want, table), ShouldBeEmpty)
		})

		Convey("Then the table is sorted non-increasing", func() {
			So(standings.NonIncreasing(table), ShouldBeTrue)
		})

		Convey("Then each entry matches the summed results", func() {
			totals := standings.PointsByDriver(season())
			for _, e := range table {
				So(e.Points, ShouldEqual, totals[e.Code])
			}
		})
	})

	Convey("Given a tie on points", t, func() {
		races := []model.Race{{Round: 1, Results: []model.RaceResult{
			{Position: 1, Driver: "B", Code: "BBB", Points: 10},
			{Position: 2, Driver: "A", Code: "AAA", Points: 10},
		}}}
		table := standings.Drivers(races)

		Convey("Then first-seen order breaks the tie with dense positions", func() {
			So(table[0].Code, ShouldEqual, "BBB")
			So(table[0].Position, ShouldEqual, 1)
			So(table[1].Code, ShouldEqual, "AAA")
			So(table[1].Position, ShouldEqual, 2)
		})
	})

	Convey("Given races without results", t, func() {
		races := []model.Race{{Round: 1}, {Round: 2}}

		Convey("Then the derived tables are empty", func() {
			So(standings.HasResults(races), ShouldBeFalse)
			So(standings.Drivers(races), ShouldBeEmpty)
			So(standings.Constructors(races), ShouldBeEmpty)
		})
	})
}

func TestConstructors(t *testing.T) {
	Convey("Given a season", t, func() {
		table := standings.Constructors(season())

		Convey("Then points are summed per team", func() {
			want := []model.StandingEntry{
				{Position: 1, Name: "Red Bull", Points: 87, Wins: 2},
				{Position: 2, Name: "Aston Martin", Points: 30},
				{Position: 3, Name: "Ferrari", Points: 0.5},
			}
			So(cmp.Diff(want, table), ShouldBeEmpty)
		})
	})
}
