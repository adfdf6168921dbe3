package model_test

import (
	"testing"

	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseSessionName(t *testing.T) {
	convey.Convey("Given session labels from different sources", t, func() {
		cases := map[string]model.SessionName{
			"フリー走行1":                 model.FreePractice1,
			"フリー走行 2":                model.FreePractice2,
			"Practice 3":             model.FreePractice3,
			"FP1":                    model.FreePractice1,
			"スプリント予選":                model.SprintQualifying,
			"スプリント・シュートアウト":          model.SprintQualifying,
			"Sprint Shootout":        model.SprintQualifying,
			"Sprint Qualifying":      model.SprintQualifying,
			"スプリント":                  model.Sprint,
			"Sprint":                 model.Sprint,
			"予選":                     model.Qualifying,
			"Qualifying":             model.Qualifying,
			"決勝":                     model.GrandPrix,
			"Race":                   model.GrandPrix,
		}

		convey.Convey("Then each maps onto the vocabulary", func() {
			for text, want := range cases {
				got, ok := model.ParseSessionName(text)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("Then unrelated text is rejected", func() {
			_, ok := model.ParseSessionName("表彰式")
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = model.ParseSessionName("   ")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestSortSessions(t *testing.T) {
	convey.Convey("Given sessions out of order", t, func() {
		sessions := []model.Session{
			{Name: model.GrandPrix, Date: "2023-04-02", TimeUTC: "05:00"},
			{Name: model.FreePractice1, Date: "2023-03-31", TimeUTC: "01:30"},
			{Name: model.Qualifying, Date: "2023-04-01", TimeUTC: "06:00"},
		}
		model.SortSessions(sessions)

		convey.Convey("Then they are ordered by UTC date and clock", func() {
			convey.So(sessions[0].Name, convey.ShouldEqual, model.FreePractice1)
			convey.So(sessions[1].Name, convey.ShouldEqual, model.Qualifying)
			convey.So(sessions[2].Name, convey.ShouldEqual, model.GrandPrix)
		})
	})

	convey.Convey("Given undated sessions", t, func() {
		sessions := []model.Session{{Name: model.GrandPrix}, {Name: model.Sprint}, {Name: model.FreePractice1}}
		model.SortSessions(sessions)

		convey.Convey("Then vocabulary order is used", func() {
			convey.So(sessions[0].Name, convey.ShouldEqual, model.FreePractice1)
			convey.So(sessions[2].Name, convey.ShouldEqual, model.GrandPrix)
		})
	})
}

func TestRaceInvariants(t *testing.T) {
	convey.Convey("Given a race list", t, func() {
		races := []model.Race{
			{Round: 2, DateStart: "2023-03-19"},
			{Round: 1, DateStart: "2023-03-05"},
			{Round: 3, DateStart: ""},
		}

		convey.Convey("Then rounds are unique and chronological", func() {
			convey.So(model.UniqueRounds(races), convey.ShouldBeTrue)
			convey.So(model.ChronologicalRounds(races), convey.ShouldBeTrue)
		})

		convey.Convey("Then SortByRound orders by round", func() {
			model.SortByRound(races)
			convey.So(races[0].Round, convey.ShouldEqual, 1)
			convey.So(races[2].Round, convey.ShouldEqual, 3)
		})

		convey.Convey("Then a duplicate round is detected", func() {
			races = append(races, model.Race{Round: 2})
			convey.So(model.UniqueRounds(races), convey.ShouldBeFalse)
		})

		convey.Convey("Then out-of-order dates are detected", func() {
			races[0].DateStart = "2023-01-01"
			convey.So(model.ChronologicalRounds(races), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given results with a retired driver", t, func() {
		results := []model.RaceResult{
			{Position: 1, Code: "VER", Points: 25},
			{Position: 2, Code: "PER", Points: 18},
			{Position: 0, PositionText: "R", Code: "LEC", Status: "Retired"},
			{Position: 0, PositionText: "R", Code: "SAI", Status: "Retired"},
		}

		convey.Convey("Then unclassified entries are ignored by the uniqueness check", func() {
			convey.So(results[2].HasPosition(), convey.ShouldBeFalse)
			convey.So(model.UniquePositions(results), convey.ShouldBeTrue)
		})

		convey.Convey("Then duplicated classified positions fail", func() {
			results[1].Position = 1
			convey.So(model.UniquePositions(results), convey.ShouldBeFalse)
		})
	})
}
