package kpi

import (
	"context"
	"sort"
	"sync"
	"time"

	dErrors "brandcert/pkg/domain-errors"
)

// InMemorySnapshotStore keeps snapshots in a map keyed by UTC date.
type InMemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[time.Time]*Snapshot
}

func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{snapshots: make(map[time.Time]*Snapshot)}
}

func (s *InMemorySnapshotStore) Upsert(_ context.Context, snapshot *Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *snapshot
	s.snapshots[Day(snapshot.Date)] = &copied
	return nil
}

func (s *InMemorySnapshotStore) GetByDate(_ context.Context, date time.Time) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[Day(date)]
	if !ok {
		return nil, dErrors.WithField(
			dErrors.New(dErrors.CodeNotFound, "snapshot not found"),
			"date", Day(date).Format(time.DateOnly))
	}
	copied := *snapshot
	return &copied, nil
}

func (s *InMemorySnapshotStore) Latest(_ context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Snapshot
	for _, snapshot := range s.snapshots {
		if latest == nil || snapshot.Date.After(latest.Date) {
			latest = snapshot
		}
	}
	if latest == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no snapshots computed yet")
	}
	copied := *latest
	return &copied, nil
}

func (s *InMemorySnapshotStore) ListRange(_ context.Context, start, end time.Time) ([]Snapshot, error) {
	start, end = Day(start), Day(end)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Snapshot
	for date, snapshot := range s.snapshots {
		if !date.Before(start) && !date.After(end) {
			matched = append(matched, *snapshot)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date)
	})
	return matched, nil
}
