package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
)

// UserRepository implements ports.UserRepository using PostgreSQL
type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) ListOrganizerIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM users WHERE role = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, string(domain.UserRoleOrganizer))
	if err != nil {
		return nil, fmt.Errorf("failed to query organizers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan organizer id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizers: %w", err)
	}
	return ids, nil
}
