package certification

import (
	"context"
	"sort"
	"sync"

	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
)

// InMemoryStore keeps records in a map guarded by an RWMutex. It implements
// the same optimistic-version semantics as the postgres store so engine tests
// exercise real conflict behavior.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.RecordID]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.RecordID]*Record)}
}

func (s *InMemoryStore) Get(_ context.Context, recordID id.RecordID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordID]
	if !ok {
		return nil, dErrors.WithField(
			dErrors.New(dErrors.CodeNotFound, "record not found"),
			"record_id", recordID.String())
	}
	copied := *record
	return &copied, nil
}

func (s *InMemoryStore) GetByBrandNumber(_ context.Context, brandNumber string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.BrandNumber == brandNumber {
			copied := *record
			return &copied, nil
		}
	}
	return nil, dErrors.WithField(
		dErrors.New(dErrors.CodeNotFound, "record not found"),
		"brand_number", brandNumber)
}

func (s *InMemoryStore) List(_ context.Context, filter ListFilter, limit, offset int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Record
	for _, record := range s.records {
		if filter.Matches(record) {
			copied := *record
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RegisteredAt.After(matched[j].RegisteredAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *InMemoryStore) Save(_ context.Context, record *Record) error {
	if record.ID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "record id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.records[record.ID]
	if !exists {
		if record.Version != 0 {
			return dErrors.WithField(
				dErrors.New(dErrors.CodeNotFound, "record not found"),
				"record_id", record.ID.String())
		}
		for _, other := range s.records {
			if other.BrandNumber == record.BrandNumber {
				return dErrors.WithField(
					dErrors.New(dErrors.CodeConflict, "brand number already registered"),
					"brand_number", record.BrandNumber)
			}
		}
		record.Version = 1
		copied := *record
		s.records[record.ID] = &copied
		return nil
	}

	if stored.Version != record.Version {
		err := dErrors.New(dErrors.CodeConflict, "stale record version")
		err = dErrors.WithField(err, "record_id", record.ID.String())
		err = dErrors.WithField(err, "stored_version", stored.Version)
		return dErrors.WithField(err, "read_version", record.Version)
	}
	record.Version++
	copied := *record
	s.records[record.ID] = &copied
	return nil
}

func (s *InMemoryStore) Count(_ context.Context, filter ListFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, record := range s.records {
		if filter.Matches(record) {
			count++
		}
	}
	return count, nil
}

// Has reports record existence without copying; used by the in-memory audit
// store to enforce referential integrity on append.
func (s *InMemoryStore) Has(recordID id.RecordID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[recordID]
	return ok
}
