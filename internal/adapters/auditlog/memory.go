package auditlog

import (
	"context"
	"sync"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
)

// DefaultMemoryCapacity bounds the in-memory store.
const DefaultMemoryCapacity = 1000

// MemoryStore is a bounded in-memory audit store; the oldest records are dropped first.
type MemoryStore struct {
	mu       sync.RWMutex
	records  []entities.AuditRecord
	capacity int
}

// NewMemoryStore creates an in-memory audit store.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// Append stores one record.
func (s *MemoryStore) Append(ctx context.Context, rec entities.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Evidence = append([]entities.Evidence(nil), rec.Evidence...)
	s.records = append(s.records, rec)
	if over := len(s.records) - s.capacity; over > 0 {
		s.records = append(s.records[:0:0], s.records[over:]...)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]entities.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []entities.AuditRecord{}
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
