package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
)

// SummaryRepository implements ports.SummaryRepository using PostgreSQL.
// The stage and announcement digests are stored as JSONB; the summary is a
// derived projection, never joined against.
type SummaryRepository struct{ db *sql.DB }

func NewSummaryRepository(db *sql.DB) ports.SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Upsert(ctx context.Context, summary *domain.DashboardSummary) error {
	stagesJSON, err := json.Marshal(summary.TodayStages)
	if err != nil {
		return fmt.Errorf("failed to marshal today stages: %w", err)
	}
	announcementsJSON, err := json.Marshal(summary.LatestAnnouncements)
	if err != nil {
		return fmt.Errorf("failed to marshal latest announcements: %w", err)
	}

	// Last write wins; a concurrent recompute simply overwrites.
	query := `
        INSERT INTO dashboard_summaries (organizer_id, today_stages, pending_entries, unpaid_entries, latest_announcements, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (organizer_id) DO UPDATE
        SET today_stages = EXCLUDED.today_stages,
            pending_entries = EXCLUDED.pending_entries,
            unpaid_entries = EXCLUDED.unpaid_entries,
            latest_announcements = EXCLUDED.latest_announcements,
            updated_at = EXCLUDED.updated_at
    `
	_, err = r.db.ExecContext(ctx, query,
		summary.OrganizerID,
		string(stagesJSON),
		summary.Counters.PendingEntries,
		summary.Counters.UnpaidEntries,
		string(announcementsJSON),
		summary.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}
	return nil
}

func (r *SummaryRepository) FindByOrganizer(ctx context.Context, organizerID string) (*domain.DashboardSummary, error) {
	query := `
        SELECT organizer_id, today_stages, pending_entries, unpaid_entries, latest_announcements, updated_at
        FROM dashboard_summaries
        WHERE organizer_id = $1
    `
	var summary domain.DashboardSummary
	var stagesJSON, announcementsJSON []byte
	err := r.db.QueryRowContext(ctx, query, organizerID).Scan(
		&summary.OrganizerID,
		&stagesJSON,
		&summary.Counters.PendingEntries,
		&summary.Counters.UnpaidEntries,
		&announcementsJSON,
		&summary.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find summary: %w", err)
	}
	if len(stagesJSON) > 0 {
		if err := json.Unmarshal(stagesJSON, &summary.TodayStages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal today stages: %w", err)
		}
	}
	if len(announcementsJSON) > 0 {
		if err := json.Unmarshal(announcementsJSON, &summary.LatestAnnouncements); err != nil {
			return nil, fmt.Errorf("failed to unmarshal latest announcements: %w", err)
		}
	}
	return &summary, nil
}
