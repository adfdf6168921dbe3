package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitwall/internal/adapters/cache"
	"github.com/okian/pitwall/internal/config"
	model "github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/internal/facade"
)

const seasonFixture = `{"MRData":{"RaceTable":{"season":"2023","Races":[
 {"season":"2023","round":"1","raceName":"Bahrain Grand Prix",
  "Circuit":{"circuitName":"Bahrain International Circuit","Location":{"locality":"Sakhir","country":"Bahrain"}},
  "date":"2023-03-05","time":"15:00:00Z"}
]}}}`

func TestApplicationWiring(t *testing.T) {
	convey.Convey("Given upstream APIs served locally", t, func() {
		var seasonHits atomic.Int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/ergast/2023.json":
				seasonHits.Add(1)
				_, _ = w.Write([]byte(seasonFixture))
			default:
				http.NotFound(w, r)
			}
		}))
		defer upstream.Close()

		t.Setenv("PITWALL_HISTORICAL_BASE_URL", upstream.URL+"/ergast")
		t.Setenv("PITWALL_LIVE_BASE_URL", upstream.URL+"/openf1")
		t.Setenv("PITWALL_WIKIPEDIA_BASE_URL", upstream.URL+"/wiki/")
		t.Setenv("PITWALL_FAN_SITE_URL", upstream.URL+"/fan/")
		t.Setenv("PITWALL_LAST_CLOSED_SEASON", "2024")
		t.Setenv("PITWALL_BATCH_DELAY_MS", "0")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)

		store, err := cache.New(cache.WithSweepInterval(0))
		convey.So(err, convey.ShouldBeNil)
		defer store.Close()

		svc := newService(cfg, store)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, facade.New(svc, facade.WithMaxSeasonSpan(cfg.MaxSeasonSpan)))

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("When a closed season is requested twice", func() {
			first := get("/api/seasons/2023/races")
			second := get("/api/seasons/2023/races")

			convey.Convey("Then the historical API is hit once", func() {
				convey.So(first.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(second.Body.String(), convey.ShouldEqual, first.Body.String())
				convey.So(seasonHits.Load(), convey.ShouldEqual, 1)

				var races []model.Race
				convey.So(json.Unmarshal(first.Body.Bytes(), &races), convey.ShouldBeNil)
				convey.So(len(races), convey.ShouldEqual, 1)
				convey.So(races[0].Circuit, convey.ShouldEqual, "Bahrain International Circuit")
			})

			convey.Convey("And the cache reports the entry", func() {
				w := get("/api/cache/stats")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"active":1`)
			})
		})

		convey.Convey("When every source for a season is down", func() {
			w := get("/api/seasons/1950/races")

			convey.Convey("Then the answer is an empty list, not an error", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldEqual, "[]\n")
			})
		})

		convey.Convey("When the docs are requested", func() {
			convey.Convey("Then the OpenAPI document is served", func() {
				convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background updaters", t, func() {
		convey.Convey("Then the system updater returns when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then a system metrics update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
