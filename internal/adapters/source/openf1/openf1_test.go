package openf1_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/pitwall/internal/adapters/source"
	"github.com/okian/pitwall/internal/adapters/source/openf1"
	model "github.com/okian/pitwall/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const meetingsFixture = `[
 {"meeting_key":1219,"meeting_name":"Bahrain Grand Prix","location":"Sakhir","country_name":"Bahrain","circuit_short_name":"Sakhir","date_start":"2024-02-29T11:30:00+00:00","year":2024},
 {"meeting_key":1229,"meeting_name":"Pre-Season Testing","location":"Sakhir","country_name":"Bahrain","circuit_short_name":"Sakhir","date_start":"2024-02-21T07:00:00+00:00","year":2024},
 {"meeting_key":1230,"meeting_name":"Japanese Grand Prix","location":"Suzuka","country_name":"Japan","circuit_short_name":"","date_start":"2024-04-05T02:30:00+00:00","year":2024},
 {"meeting_key":1220,"meeting_name":"Saudi Arabian Grand Prix","location":"","country_name":"Saudi Arabia","circuit_short_name":"Jeddah","date_start":"2024-03-07T13:30:00+00:00","year":2024}
]`

const sessionsFixture = `[
 {"session_key":9465,"meeting_key":1229,"session_name":"Day 1","session_type":"Practice","date_start":"2024-02-21T07:00:00+00:00"},
 {"session_key":9472,"meeting_key":1219,"session_name":"Race","session_type":"Race","date_start":"2024-03-02T15:00:00+00:00"},
 {"session_key":9467,"meeting_key":1219,"session_name":"Practice 1","session_type":"Practice","date_start":"2024-02-29T11:30:00+00:00"},
 {"session_key":9468,"meeting_key":1219,"session_name":"Qualifying","session_type":"Qualifying","date_start":"2024-03-01T16:00:00+00:00"},
 {"session_key":9496,"meeting_key":1230,"session_name":"Race","session_type":"Race","date_start":"2024-04-07T05:00:00+00:00"}
]`

const driversFixture = `[
 {"driver_number":11,"full_name":"Sergio PEREZ","name_acronym":"PER","team_name":"Red Bull Racing","team_colour":"3671C6"},
 {"driver_number":1,"full_name":"Max VERSTAPPEN","name_acronym":"ver","team_name":"Red Bull Racing","team_colour":"3671C6"},
 {"driver_number":1,"full_name":"Max VERSTAPPEN","name_acronym":"VER","team_name":"Red Bull Racing"}
]`

type fixtureServer struct {
	*httptest.Server
	sessionKey atomic.Value
	sessionsOK bool
}

func newFixtureServer(sessionsOK bool) *fixtureServer {
	fs := &fixtureServer{sessionsOK: sessionsOK}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/meetings":
			_, _ = w.Write([]byte(meetingsFixture))
		case "/v1/sessions":
			if !fs.sessionsOK {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(sessionsFixture))
		case "/v1/drivers":
			fs.sessionKey.Store(r.URL.Query().Get("session_key"))
			_, _ = w.Write([]byte(driversFixture))
		default:
			http.NotFound(w, r)
		}
	}))
	return fs
}

func TestClient_SeasonRaces(t *testing.T) {
	Convey("Given meetings and sessions for a year", t, func() {
		srv := newFixtureServer(true)
		defer srv.Close()
		c := openf1.New(openf1.WithBaseURL(srv.URL + "/v1"))

		races, err := c.SeasonRaces(context.Background(), 2024)

		Convey("Then testing is dropped and rounds follow start dates", func() {
			So(err, ShouldBeNil)
			So(len(races), ShouldEqual, 3)
			So(races[0].Name, ShouldEqual, "Bahrain Grand Prix")
			So(races[1].Name, ShouldEqual, "Saudi Arabian Grand Prix")
			So(races[2].Name, ShouldEqual, "Japanese Grand Prix")
			for i, r := range races {
				So(r.Round, ShouldEqual, i+1)
				So(r.Source, ShouldEqual, model.SourceLive)
			}
			So(model.ChronologicalRounds(races), ShouldBeTrue)
		})

		Convey("Then sessions are joined on meeting_key with both clocks", func() {
			want := []model.Session{
				{Name: model.FreePractice1, Date: "2024-02-29", TimeUTC: "11:30", TimeJST: "20:30"},
				{Name: model.Qualifying, Date: "2024-03-01", TimeUTC: "16:00", TimeJST: "01:00"},
				{Name: model.GrandPrix, Date: "2024-03-02", TimeUTC: "15:00", TimeJST: "00:00"},
			}
			So(cmp.Diff(want, races[0].Sessions), ShouldBeEmpty)
			So(races[0].DateStart, ShouldEqual, "2024-02-29")
			So(races[0].DateEnd, ShouldEqual, "2024-03-02")
		})

		Convey("Then missing fields use the sentinels", func() {
			So(races[1].Location, ShouldEqual, model.UnknownLocation)
			So(races[2].Circuit, ShouldEqual, model.UnknownCircuit)
			So(races[1].Sessions, ShouldBeEmpty)
		})
	})

	Convey("Given the sessions endpoint failing", t, func() {
		srv := newFixtureServer(false)
		defer srv.Close()
		c := openf1.New(openf1.WithBaseURL(srv.URL + "/v1"))

		races, err := c.SeasonRaces(context.Background(), 2024)

		Convey("Then the calendar survives without timetables", func() {
			So(err, ShouldBeNil)
			So(len(races), ShouldEqual, 3)
			So(races[0].Sessions, ShouldBeEmpty)
		})
	})

	Convey("Given the meetings endpoint missing", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		c := openf1.New(openf1.WithBaseURL(srv.URL))

		_, err := c.SeasonRaces(context.Background(), 2024)

		Convey("Then the failure is classified", func() {
			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a non-array payload", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"detail":"oops"}`))
		}))
		defer srv.Close()
		c := openf1.New(openf1.WithBaseURL(srv.URL))

		_, err := c.SeasonRaces(context.Background(), 2024)

		Convey("Then it is malformed", func() {
			So(errors.Is(err, source.ErrMalformed), ShouldBeTrue)
		})
	})
}

func TestClient_LatestDrivers(t *testing.T) {
	Convey("Given sessions partly in the future", t, func() {
		srv := newFixtureServer(true)
		defer srv.Close()
		now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
		c := openf1.New(openf1.WithBaseURL(srv.URL+"/v1"), openf1.WithClock(func() time.Time { return now }))

		drivers, err := c.LatestDrivers(context.Background(), 2024)

		Convey("Then the latest started session is used", func() {
			So(err, ShouldBeNil)
			So(srv.sessionKey.Load(), ShouldEqual, "9472")
		})

		Convey("Then drivers are deduplicated and sorted by number", func() {
			So(len(drivers), ShouldEqual, 2)
			So(drivers[0].Number, ShouldEqual, 1)
			So(drivers[0].Code, ShouldEqual, "VER")
			So(drivers[1].Code, ShouldEqual, "PER")
		})
	})

	Convey("Given no session has started", t, func() {
		srv := newFixtureServer(true)
		defer srv.Close()
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c := openf1.New(openf1.WithBaseURL(srv.URL+"/v1"), openf1.WithClock(func() time.Time { return now }))

		drivers, err := c.LatestDrivers(context.Background(), 2024)

		Convey("Then nothing is returned", func() {
			So(err, ShouldBeNil)
			So(drivers, ShouldBeNil)
		})
	})
}
