package batch_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/pitwall/internal/adapters/batch"
	. "github.com/smartystreets/goconvey/convey"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return s.err
}

func TestRunner_Run(t *testing.T) {
	Convey("Given a runner with batches of 5", t, func() {
		rec := &sleepRecorder{}
		r := batch.New(batch.WithSize(5), batch.WithDelay(500*time.Millisecond), batch.WithSleep(rec.sleep))

		Convey("When running 12 tasks", func() {
			var (
				mu      sync.Mutex
				seen    = map[int]bool{}
				running int32
				peak    int32
			)
			err := r.Run(context.Background(), 12, func(_ context.Context, i int) error {
				cur := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				mu.Lock()
				seen[i] = true
				mu.Unlock()
				return nil
			})

			Convey("Then every index runs exactly once", func() {
				So(err, ShouldBeNil)
				So(len(seen), ShouldEqual, 12)
			})

			Convey("Then concurrency never exceeds the batch size", func() {
				So(atomic.LoadInt32(&peak), ShouldBeLessThanOrEqualTo, 5)
			})

			Convey("Then the delay falls between batches only", func() {
				So(rec.delays, ShouldResemble, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond})
			})
		})

		Convey("When some tasks fail", func() {
			var done int32
			boom := errors.New("boom")
			err := r.Run(context.Background(), 7, func(_ context.Context, i int) error {
				atomic.AddInt32(&done, 1)
				if i == 2 || i == 6 {
					return boom
				}
				return nil
			})

			Convey("Then the failures are isolated and reported together", func() {
				So(atomic.LoadInt32(&done), ShouldEqual, 7)
				So(errors.Is(err, boom), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "item 2")
				So(err.Error(), ShouldContainSubstring, "item 6")
			})
		})

		Convey("When there is nothing to do", func() {
			err := r.Run(context.Background(), 0, func(context.Context, int) error { return errors.New("unreachable") })

			Convey("Then it returns immediately", func() {
				So(err, ShouldBeNil)
				So(rec.delays, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a wait that is cancelled", t, func() {
		rec := &sleepRecorder{err: context.Canceled}
		r := batch.New(batch.WithSize(2), batch.WithSleep(rec.sleep))

		var done int32
		err := r.Run(context.Background(), 6, func(context.Context, int) error {
			atomic.AddInt32(&done, 1)
			return nil
		})

		Convey("Then later batches are not started", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(atomic.LoadInt32(&done), ShouldEqual, 2)
		})
	})

	Convey("Given the real sleeper", t, func() {
		r := batch.New(batch.WithSize(1), batch.WithDelay(time.Hour))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := r.Run(ctx, 2, func(context.Context, int) error { return nil })

		Convey("Then a cancelled context interrupts the delay", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
