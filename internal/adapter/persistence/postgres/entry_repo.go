package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
)

// EntryRepository implements ports.EntryRepository using PostgreSQL
type EntryRepository struct{ db *sql.DB }

func NewEntryRepository(db *sql.DB) ports.EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	query := `
        INSERT INTO entries (id, event_id, competitor_id, competitor_name, status, payment_status,
                             fee_amount, currency, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.EventID,
		entry.CompetitorID,
		entry.CompetitorName,
		string(entry.Status),
		string(entry.PaymentStatus),
		entry.FeeAmount,
		entry.Currency,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

func (r *EntryRepository) FindByID(ctx context.Context, id string) (*domain.Entry, error) {
	query := `
        SELECT id, event_id, competitor_id, competitor_name, status, payment_status,
               fee_amount, currency, created_at, updated_at
        FROM entries
        WHERE id = $1
    `
	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Entry", id)
		}
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}
	return entry, nil
}

func (r *EntryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	query := `
        UPDATE entries
        SET competitor_id = $2, competitor_name = $3, status = $4, payment_status = $5,
            fee_amount = $6, currency = $7, updated_at = $8
        WHERE id = $1
    `
	result, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.CompetitorID,
		entry.CompetitorName,
		string(entry.Status),
		string(entry.PaymentStatus),
		entry.FeeAmount,
		entry.Currency,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Entry", entry.ID)
	}
	return nil
}

func (r *EntryRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Entry, error) {
	query := `
        SELECT id, event_id, competitor_id, competitor_name, status, payment_status,
               fee_amount, currency, created_at, updated_at
        FROM entries
        WHERE event_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

func (r *EntryRepository) CountByEventAndStatus(ctx context.Context, eventID string, status domain.EntryStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE event_id = $1 AND status = $2`,
		eventID, string(status),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries by status: %w", err)
	}
	return count, nil
}

func (r *EntryRepository) CountByEventAndPayment(ctx context.Context, eventID string, status domain.PaymentStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE event_id = $1 AND payment_status = $2`,
		eventID, string(status),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries by payment: %w", err)
	}
	return count, nil
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var entry domain.Entry
	err := row.Scan(
		&entry.ID,
		&entry.EventID,
		&entry.CompetitorID,
		&entry.CompetitorName,
		&entry.Status,
		&entry.PaymentStatus,
		&entry.FeeAmount,
		&entry.Currency,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
