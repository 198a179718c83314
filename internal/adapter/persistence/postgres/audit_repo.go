package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
)

// AuditRepository implements ports.AuditRepository using PostgreSQL.
// The log is append-only; there is no update or delete path.
type AuditRepository struct{ db *sql.DB }

func NewAuditRepository(db *sql.DB) ports.AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
        INSERT INTO audit_log (id, action, actor_id, event_id, resource_type, resource_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.ActorID,
		entry.EventID,
		entry.ResourceType,
		entry.ResourceID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}
