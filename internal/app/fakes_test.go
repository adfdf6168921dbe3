package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/okian/pitwall/internal/adapters/source"
	model "github.com/okian/pitwall/internal/domain/model"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *manualClock { return &manualClock{now: t} }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// counter is a concurrency-safe call counter keyed by operation.
type counter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *counter) hit(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[op]++
}

func (c *counter) count(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

type fakeHistorical struct {
	counter
	races        []model.Race
	racesErr     error
	drivers      []model.StandingEntry
	constructors []model.StandingEntry
	results      map[int]*model.Race
}

func (f *fakeHistorical) SeasonRaces(context.Context, int) ([]model.Race, error) {
	f.hit("races")
	return f.races, f.racesErr
}

func (f *fakeHistorical) DriverStandings(context.Context, int) ([]model.StandingEntry, error) {
	f.hit("drivers")
	return f.drivers, nil
}

func (f *fakeHistorical) ConstructorStandings(context.Context, int) ([]model.StandingEntry, error) {
	f.hit("constructors")
	return f.constructors, nil
}

func (f *fakeHistorical) RaceResults(_ context.Context, _, round int) (*model.Race, error) {
	f.hit("results")
	return f.results[round], nil
}

type fakeLive struct {
	counter
	races   []model.Race
	drivers []model.Driver
	err     error
}

func (f *fakeLive) SeasonRaces(context.Context, int) ([]model.Race, error) {
	f.hit("races")
	return f.races, f.err
}

func (f *fakeLive) LatestDrivers(context.Context, int) ([]model.Driver, error) {
	f.hit("drivers")
	return f.drivers, f.err
}

type fakeSchedule struct {
	counter
	races []model.Race
	err   error
}

func (f *fakeSchedule) Schedule(context.Context, int) ([]model.Race, error) {
	f.hit("schedule")
	// copies keep the fake's fixture unchanged across assemblies
	return append([]model.Race(nil), f.races...), f.err
}

type fakeSessions struct {
	counter
	mu      sync.Mutex
	byRound map[int][]model.Session
}

func (f *fakeSessions) set(round int, sessions []model.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byRound[round] = sessions
}

func (f *fakeSessions) Sessions(_ context.Context, _ int, race model.Race) ([]model.Session, error) {
	f.hit("sessions")
	f.mu.Lock()
	defer f.mu.Unlock()
	sessions, ok := f.byRound[race.Round]
	if !ok {
		return nil, source.ErrNotFound
	}
	return sessions, nil
}

// cancellingSessions cancels the caller's context on its cancelAt-th call,
// like a client that disconnects halfway through a season scrape.
type cancellingSessions struct {
	mu       sync.Mutex
	calls    int
	cancelAt int
	cancel   context.CancelFunc
}

func (f *cancellingSessions) Sessions(context.Context, int, model.Race) ([]model.Session, error) {
	f.mu.Lock()
	f.calls++
	if f.calls == f.cancelAt && f.cancel != nil {
		f.cancel()
	}
	f.mu.Unlock()
	return []model.Session{{Name: model.GrandPrix, Date: "2010-03-14", TimeUTC: "12:00", TimeJST: "21:00"}}, nil
}

// gaugedSessions records how many scrapes are in flight at once.
type gaugedSessions struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    int
	hold     time.Duration
}

func (f *gaugedSessions) Sessions(context.Context, int, model.Race) ([]model.Session, error) {
	f.mu.Lock()
	f.inFlight++
	f.calls++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(f.hold)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return []model.Session{{Name: model.GrandPrix, Date: "2001-03-04", TimeUTC: "05:00", TimeJST: "14:00"}}, nil
}

func (f *gaugedSessions) snapshot() (peak, calls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak, f.calls
}
