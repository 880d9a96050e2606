package audittrail

import (
	"context"
	"sort"
	"sync"
	"time"

	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
)

// RecordChecker answers whether a record exists. The in-memory store uses it
// to enforce the referential integrity the postgres store gets from its
// foreign key.
type RecordChecker interface {
	Has(recordID id.RecordID) bool
}

// InMemoryStore keeps entries in insertion order guarded by an RWMutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	records RecordChecker
}

// NewInMemoryStore builds a store. records may be nil, which skips the
// existence check (useful for store-only tests).
func NewInMemoryStore(records RecordChecker) *InMemoryStore {
	return &InMemoryStore{records: records}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if s.records != nil && !s.records.Has(entry.RecordID) {
		return dErrors.WithField(
			dErrors.New(dErrors.CodeIntegrity, "audit entry references nonexistent record"),
			"record_id", entry.RecordID.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ListForRecord(_ context.Context, recordID id.RecordID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []Entry
	for _, entry := range s.entries {
		if entry.RecordID == recordID {
			matched = append(matched, entry)
		}
	}
	sortNewestFirst(matched)
	return matched, nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, since time.Time) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []Entry
	for _, entry := range s.entries {
		if !entry.ChangedAt.Before(since) {
			matched = append(matched, entry)
		}
	}
	sortNewestFirst(matched)
	return matched, nil
}

func (s *InMemoryStore) AggregateByActor(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, entry := range s.entries {
		counts[entry.Actor]++
	}
	return counts, nil
}

func (s *InMemoryStore) AggregateByDay(_ context.Context, since time.Time) ([]DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byDay := make(map[time.Time]int)
	for _, entry := range s.entries {
		if entry.ChangedAt.Before(since) {
			continue
		}
		day := entry.ChangedAt.UTC().Truncate(24 * time.Hour)
		byDay[day]++
	}
	buckets := make([]DayCount, 0, len(byDay))
	for day, count := range byDay {
		buckets = append(buckets, DayCount{Date: day, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})
	return buckets, nil
}

func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ChangedAt.After(entries[j].ChangedAt)
	})
}
