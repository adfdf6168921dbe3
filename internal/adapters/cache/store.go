// Package cache is the in-memory key/value store with per-entry expiry that
// sits in front of every upstream source.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

const defaultSweepInterval = 10 * time.Minute

// entry is a stored value with its lifetime.
type entry struct {
	Key       string
	Value     any
	CreatedAt time.Time
	ExpiresAt time.Time
}

// expired uses a strict comparison: an entry is still served at exactly
// its expiry instant.
func (e entry) expired(now time.Time) bool { return now.After(e.ExpiresAt) }

// Stats is a diagnostic snapshot of the store.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

// MemoryStore is a mutex-guarded map. The lock is held only for the map
// operation itself.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry

	now           func() time.Time
	sweepInterval time.Duration
	scheduler     *cron.Cron
	log           logger.Logger
}

// New creates a store and starts its sweep job.
func New(opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		entries:       make(map[string]entry),
		now:           time.Now,
		sweepInterval: defaultSweepInterval,
		log:           logger.Get().Named("cache"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.sweepInterval > 0 {
		s.scheduler = cron.New()
		spec := fmt.Sprintf("@every %s", s.sweepInterval)
		if _, err := s.scheduler.AddFunc(spec, s.sweepJob); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSchedule, spec, err)
		}
		s.scheduler.Start()
	}
	return s, nil
}

// Close stops the sweep job and waits for a running sweep to finish.
func (s *MemoryStore) Close() {
	if s.scheduler == nil {
		return
	}
	<-s.scheduler.Stop().Done()
}

// Set stores value under key until now+ttl, replacing any existing entry.
func (s *MemoryStore) Set(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}
	now := s.now()
	s.mu.Lock()
	s.entries[key] = entry{Key: key, Value: value, CreatedAt: now, ExpiresAt: now.Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Get returns the value if present and fresh. An expired entry is removed.
func (s *MemoryStore) Get(key string) (any, bool) {
	e, ok := s.lookup(key)
	metrics.RecordCacheLookup(Kind(key), ok)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// Has reports freshness with the same eviction side effect as Get.
func (s *MemoryStore) Has(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

func (s *MemoryStore) lookup(key string) (entry, bool) {
	now := s.now()
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok && e.expired(now) {
		delete(s.entries, key)
		s.mu.Unlock()
		metrics.RecordCacheEviction(metrics.EvictionLazy, 1)
		return entry{}, false
	}
	s.mu.Unlock()
	return e, ok
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()
	if ok {
		metrics.RecordCacheEviction(metrics.EvictionInvalidate, 1)
	}
}

// Clear drops every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[string]entry)
	s.mu.Unlock()
	metrics.RecordCacheEviction(metrics.EvictionInvalidate, n)
}

// Sweep removes every expired entry and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	removed := 0
	s.mu.Lock()
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	s.mu.Unlock()
	metrics.RecordCacheEviction(metrics.EvictionSweep, removed)
	return removed
}

func (s *MemoryStore) sweepJob() {
	if n := s.Sweep(); n > 0 {
		s.log.Debug(context.Background(), "cache sweep", logger.Int("removed", n))
	}
}

// Stats classifies every entry against the current time.
func (s *MemoryStore) Stats() Stats {
	now := s.now()
	var st Stats
	s.mu.Lock()
	st.Total = len(s.entries)
	for _, e := range s.entries {
		if e.expired(now) {
			st.Expired++
		}
	}
	s.mu.Unlock()
	st.Active = st.Total - st.Expired
	return st
}

// Lookup is a typed Get. A value of another type counts as a miss.
func Lookup[T any](s *MemoryStore, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Kind is the key prefix used as a metrics label: "races:2023" -> "races".
func Kind(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
