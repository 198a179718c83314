// Package postgres implements the repository ports over PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
)

// EventRepository implements ports.EventRepository using PostgreSQL
type EventRepository struct{ db *sql.DB }

func NewEventRepository(db *sql.DB) ports.EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
        INSERT INTO events (id, organizer_id, title, dates_from, dates_to, end_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	var datesFrom, datesTo, endDate interface{}
	if event.Dates != nil {
		datesFrom = event.Dates.From
		datesTo = event.Dates.To
	}
	if event.EndDate != nil {
		endDate = *event.EndDate
	}
	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.OrganizerID,
		event.Title,
		datesFrom,
		datesTo,
		endDate,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
        SELECT id, organizer_id, title, dates_from, dates_to, end_date, created_at, updated_at
        FROM events
        WHERE id = $1
    `
	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Event", id)
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
        UPDATE events
        SET organizer_id = $2, title = $3, dates_from = $4, dates_to = $5, end_date = $6, updated_at = $7
        WHERE id = $1
    `
	var datesFrom, datesTo, endDate interface{}
	if event.Dates != nil {
		datesFrom = event.Dates.From
		datesTo = event.Dates.To
	}
	if event.EndDate != nil {
		endDate = *event.EndDate
	}
	result, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.OrganizerID,
		event.Title,
		datesFrom,
		datesTo,
		endDate,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Event", event.ID)
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Event", id)
	}
	return nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	// Single-field query; the recompute engine filters end dates in memory.
	query := `
        SELECT id, organizer_id, title, dates_from, dates_to, end_date, created_at, updated_at
        FROM events
        WHERE organizer_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var event domain.Event
	var datesFrom, datesTo, endDate sql.NullTime
	err := row.Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&datesFrom,
		&datesTo,
		&endDate,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if datesTo.Valid {
		event.Dates = &domain.DateRange{From: datesFrom.Time, To: datesTo.Time}
	}
	if endDate.Valid {
		event.EndDate = &endDate.Time
	}
	return &event, nil
}
