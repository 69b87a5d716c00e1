package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pagetrend/pagetrend/internal/trend"
)

// Entry is a report together with the time it was last stored.
type Entry struct {
	Report    *trend.Report
	UpdatedAt time.Time
}

// Store is a thread-safe in-memory report store, keyed by source ID.
// A background goroutine (Run) periodically evicts entries that have not
// been refreshed within the configured TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put stores or replaces the report for r.SourceID.
// Callers must not modify r after calling Put.
func (s *Store) Put(r *trend.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[r.SourceID] = &Entry{
		Report:    r,
		UpdatedAt: s.now(),
	}
}

// Get returns the Entry for the given source ID and whether one was found.
// The entry may be stale if the TTL has elapsed; callers that care compare
// UpdatedAt against TTL.
func (s *Store) Get(sourceID string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[sourceID]
	return e, ok
}

// List returns all entries whose UpdatedAt is within the TTL, sorted by
// source ID so API output is deterministic.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		if e.UpdatedAt.After(cutoff) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Report.SourceID < out[j].Report.SourceID
	})
	return out
}

// Count returns the total number of entries currently held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// TTL returns the store's eviction TTL.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Evict removes entries whose UpdatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for id, e := range s.data {
		if !e.UpdatedAt.After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the background TTL eviction loop. It ticks at half the TTL
// interval (minimum 1 second) so entries are evicted promptly. Run blocks
// until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted stale reports", "count", n)
			}
		}
	}
}
