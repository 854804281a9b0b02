package memory

import (
	"context"
	"sync"
	"time"

	"eventforge.io/eventforge/internal/repository"
)

// AuditStore keeps audit records in insertion order. It has its own lock
// so detached writers never wait on an event transaction.
type AuditStore struct {
	mu      sync.Mutex
	records []repository.AuditRecord
}

// NewAuditStore creates an empty AuditStore.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

var _ repository.AuditStore = (*AuditStore)(nil)

// Append stores rec. Records with an already known ID are ignored.
func (s *AuditStore) Append(_ context.Context, rec repository.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.records {
		if existing.ID == rec.ID {
			return nil
		}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, rec)
	return nil
}

// ListByResource returns the records of one resource, oldest first.
func (s *AuditStore) ListByResource(_ context.Context, resourceType, resourceID string) ([]repository.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []repository.AuditRecord
	for _, rec := range s.records {
		if rec.ResourceType == resourceType && rec.ResourceID == resourceID {
			out = append(out, rec)
		}
	}
	return out, nil
}
