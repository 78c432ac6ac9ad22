// Package memory implements the stores in memory.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/etnz/wealth/store"
	"github.com/google/uuid"
)

// RunLog is an in-memory implementation of store.RunLog.
type RunLog struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]*store.LogEntry
}

// NewRunLog creates a new in-memory run log.
func NewRunLog() *RunLog {
	return &RunLog{entries: make(map[uuid.UUID][]*store.LogEntry)}
}

// Compile-time interface check.
var _ store.RunLog = (*RunLog)(nil)

// Insert appends an entry.
func (s *RunLog) Insert(_ context.Context, e *store.LogEntry) error {
	if e == nil || e.RunID == uuid.Nil || e.Level == "" {
		return store.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *e
	s.entries[e.RunID] = append(s.entries[e.RunID], &c)
	return nil
}

// ListByRun returns the entries of a run.
func (s *RunLog) ListByRun(_ context.Context, runID uuid.UUID) ([]*store.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.entries[runID]
	if !ok {
		return nil, store.ErrNotFound
	}
	res := make([]*store.LogEntry, len(entries))
	for i, e := range entries {
		c := *e
		res[i] = &c
	}
	slices.SortStableFunc(res, func(a, b *store.LogEntry) int { return a.AddTime.Compare(b.AddTime) })
	return res, nil
}

// SeriesStore is an in-memory implementation of store.SeriesStore.
type SeriesStore struct {
	mu   sync.RWMutex
	data map[string]*store.Point // keyed by (run_id, series, date, column)
}

// NewSeriesStore creates a new in-memory series store.
func NewSeriesStore() *SeriesStore {
	return &SeriesStore{data: make(map[string]*store.Point)}
}

// Compile-time interface check.
var _ store.SeriesStore = (*SeriesStore)(nil)

// pointKey generates a unique key for a point.
func pointKey(p *store.Point) string {
	return fmt.Sprintf("%s|%s|%s|%s", p.RunID, p.Series, p.Date, p.Column)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate.
func (s *SeriesStore) InsertBulk(_ context.Context, points []*store.Point) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return err
		}
		key := pointKey(p)
		if _, exists := s.data[key]; exists {
			return store.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return store.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		c := *p
		s.data[pointKey(p)] = &c
	}
	return nil
}

// GetBySeries returns the points of a run series ordered by date then column index.
func (s *SeriesStore) GetBySeries(_ context.Context, runID uuid.UUID, series string) ([]*store.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []*store.Point
	for _, p := range s.data {
		if p.RunID == runID && p.Series == series {
			c := *p
			res = append(res, &c)
		}
	}
	if len(res) == 0 {
		return nil, store.ErrNotFound
	}
	slices.SortFunc(res, func(a, b *store.Point) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return res, nil
}
