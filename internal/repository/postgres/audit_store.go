package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"eventforge.io/eventforge/internal/repository"
)

// AuditStore appends rows to audit_logs.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

var _ repository.AuditStore = (*AuditStore)(nil)

// Append inserts rec, joining the caller's transaction when ctx carries one.
func (s *AuditStore) Append(ctx context.Context, rec repository.AuditRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := conn(ctx, s.pool).Exec(ctx, `
		INSERT INTO audit_logs (id, action, resource_type, resource_id, actor, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Action, rec.ResourceType, rec.ResourceID, rec.Actor, rec.Details, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log %s: %w", rec.ID, err)
	}
	return nil
}

// ListByResource returns audit records for one resource, oldest first.
func (s *AuditStore) ListByResource(ctx context.Context, resourceType, resourceID string) ([]repository.AuditRecord, error) {
	rows, err := conn(ctx, s.pool).Query(ctx, `
		SELECT id, action, resource_type, resource_id, actor, details, created_at
		FROM audit_logs
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at, id`, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var out []repository.AuditRecord
	for rows.Next() {
		var rec repository.AuditRecord
		if err := rows.Scan(&rec.ID, &rec.Action, &rec.ResourceType, &rec.ResourceID, &rec.Actor, &rec.Details, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
