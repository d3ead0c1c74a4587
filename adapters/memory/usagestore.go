package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pagecraft/pagecraft/domain/usage"
	"github.com/pagecraft/pagecraft/ports"
)

// UsageStore is an in-memory implementation of ports.UsageStore.
// Records live for the process lifetime unless pruned; nothing survives a
// restart.
type UsageStore struct {
	mu      sync.RWMutex
	records map[string]usage.Record
}

// NewUsageStore creates a new in-memory usage store.
func NewUsageStore() *UsageStore {
	return &UsageStore{
		records: make(map[string]usage.Record),
	}
}

// Get retrieves the record for a key.
func (s *UsageStore) Get(ctx context.Context, key string) (usage.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	return record, ok, nil
}

// Set overwrites the record for a key wholesale.
func (s *UsageStore) Set(ctx context.Context, key string, record usage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = record
	return nil
}

// Increment atomically commits one request using the given number of images.
func (s *UsageStore) Increment(ctx context.Context, key string, images int, now time.Time) (usage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.records[key].Add(images, now)
	s.records[key] = record
	return record, nil
}

// Reset clears every record (for test isolation).
func (s *UsageStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]usage.Record)
	return nil
}

// PruneBefore removes records last updated before the cutoff.
func (s *UsageStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, record := range s.records {
		if record.LastUpdated.Before(cutoff) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of records (for testing).
func (s *UsageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ensure interface compliance.
var _ ports.UsageStore = (*UsageStore)(nil)
