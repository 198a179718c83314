package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
)

// StageRepository implements ports.StageRepository using PostgreSQL
type StageRepository struct{ db *sql.DB }

func NewStageRepository(db *sql.DB) ports.StageRepository {
	return &StageRepository{db: db}
}

func (r *StageRepository) Create(ctx context.Context, stage *domain.Stage) error {
	query := `
        INSERT INTO stages (id, event_id, name, stage_order, start_at, location, distance_km,
                            status, delay_minutes, notes, updated_by, started_at, completed_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err := r.db.ExecContext(ctx, query,
		stage.ID,
		stage.EventID,
		stage.Name,
		stage.Order,
		stage.StartAt,
		stage.Location,
		stage.DistanceKm,
		string(stage.Status),
		stage.DelayMinutes,
		stage.Notes,
		stage.UpdatedBy,
		stage.StartedAt,
		stage.CompletedAt,
		stage.CreatedAt,
		stage.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create stage: %w", err)
	}
	return nil
}

func (r *StageRepository) FindByID(ctx context.Context, id string) (*domain.Stage, error) {
	query := `
        SELECT id, event_id, name, stage_order, start_at, location, distance_km,
               status, delay_minutes, notes, updated_by, started_at, completed_at, created_at, updated_at
        FROM stages
        WHERE id = $1
    `
	stage, err := scanStage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Stage", id)
		}
		return nil, fmt.Errorf("failed to find stage: %w", err)
	}
	return stage, nil
}

func (r *StageRepository) Update(ctx context.Context, stage *domain.Stage) error {
	query := `
        UPDATE stages
        SET name = $2, stage_order = $3, start_at = $4, location = $5, distance_km = $6,
            status = $7, delay_minutes = $8, notes = $9, updated_by = $10,
            started_at = $11, completed_at = $12, updated_at = $13
        WHERE id = $1
    `
	result, err := r.db.ExecContext(ctx, query,
		stage.ID,
		stage.Name,
		stage.Order,
		stage.StartAt,
		stage.Location,
		stage.DistanceKm,
		string(stage.Status),
		stage.DelayMinutes,
		stage.Notes,
		stage.UpdatedBy,
		stage.StartedAt,
		stage.CompletedAt,
		stage.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update stage: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Stage", stage.ID)
	}
	return nil
}

func (r *StageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stage: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Stage", id)
	}
	return nil
}

func (r *StageRepository) ListByEventBetween(ctx context.Context, eventID string, from, to time.Time) ([]*domain.Stage, error) {
	query := `
        SELECT id, event_id, name, stage_order, start_at, location, distance_km,
               status, delay_minutes, notes, updated_by, started_at, completed_at, created_at, updated_at
        FROM stages
        WHERE event_id = $1 AND start_at >= $2 AND start_at < $3
        ORDER BY start_at
    `
	rows, err := r.db.QueryContext(ctx, query, eventID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages: %w", err)
	}
	defer rows.Close()

	var stages []*domain.Stage
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stages = append(stages, stage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stages: %w", err)
	}
	return stages, nil
}

func scanStage(row rowScanner) (*domain.Stage, error) {
	var stage domain.Stage
	var startAt, startedAt, completedAt sql.NullTime
	err := row.Scan(
		&stage.ID,
		&stage.EventID,
		&stage.Name,
		&stage.Order,
		&startAt,
		&stage.Location,
		&stage.DistanceKm,
		&stage.Status,
		&stage.DelayMinutes,
		&stage.Notes,
		&stage.UpdatedBy,
		&startedAt,
		&completedAt,
		&stage.CreatedAt,
		&stage.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startAt.Valid {
		stage.StartAt = &startAt.Time
	}
	if startedAt.Valid {
		stage.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		stage.CompletedAt = &completedAt.Time
	}
	return &stage, nil
}
