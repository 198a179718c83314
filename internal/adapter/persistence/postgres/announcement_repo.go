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

// AnnouncementRepository implements ports.AnnouncementRepository using
// PostgreSQL. Revisions live in a child table and are written in the same
// transaction as the announcement itself.
type AnnouncementRepository struct{ db *sql.DB }

func NewAnnouncementRepository(db *sql.DB) ports.AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Create(ctx context.Context, announcement *domain.Announcement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO announcements (id, event_id, title, body, audience, pinned, status,
                                   publish_at, published_at, created_by, updated_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	_, err = tx.ExecContext(ctx, query,
		announcement.ID,
		announcement.EventID,
		announcement.Title,
		announcement.Body,
		string(announcement.Audience),
		announcement.Pinned,
		string(announcement.Status),
		announcement.PublishAt,
		announcement.PublishedAt,
		announcement.CreatedBy,
		announcement.UpdatedBy,
		announcement.CreatedAt,
		announcement.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}

	for _, rev := range announcement.Revisions {
		if err := insertRevision(ctx, tx, announcement.ID, rev); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit announcement: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) FindByID(ctx context.Context, id string) (*domain.Announcement, error) {
	query := `
        SELECT id, event_id, title, body, audience, pinned, status,
               publish_at, published_at, created_by, updated_by, created_at, updated_at
        FROM announcements
        WHERE id = $1
    `
	announcement, err := scanAnnouncement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Announcement", id)
		}
		return nil, fmt.Errorf("failed to find announcement: %w", err)
	}

	revisions, err := r.loadRevisions(ctx, id)
	if err != nil {
		return nil, err
	}
	announcement.Revisions = revisions
	return announcement, nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, announcement *domain.Announcement, revision *domain.Revision) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        UPDATE announcements
        SET title = $2, body = $3, audience = $4, pinned = $5, status = $6,
            publish_at = $7, published_at = $8, updated_by = $9, updated_at = $10
        WHERE id = $1
    `
	result, err := tx.ExecContext(ctx, query,
		announcement.ID,
		announcement.Title,
		announcement.Body,
		string(announcement.Audience),
		announcement.Pinned,
		string(announcement.Status),
		announcement.PublishAt,
		announcement.PublishedAt,
		announcement.UpdatedBy,
		announcement.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Announcement", announcement.ID)
	}

	if revision != nil {
		if err := insertRevision(ctx, tx, announcement.ID, *revision); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit announcement: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) LatestPublishedByEvent(ctx context.Context, eventID string) (*domain.Announcement, error) {
	query := `
        SELECT id, event_id, title, body, audience, pinned, status,
               publish_at, published_at, created_by, updated_by, created_at, updated_at
        FROM announcements
        WHERE event_id = $1 AND status = 'published'
        ORDER BY published_at DESC
        LIMIT 1
    `
	announcement, err := scanAnnouncement(r.db.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest published announcement: %w", err)
	}
	return announcement, nil
}

func (r *AnnouncementRepository) ListDuePublications(ctx context.Context, now time.Time) ([]*domain.Announcement, error) {
	query := `
        SELECT id, event_id, title, body, audience, pinned, status,
               publish_at, published_at, created_by, updated_by, created_at, updated_at
        FROM announcements
        WHERE status = 'scheduled' AND publish_at <= $1
        ORDER BY publish_at
    `
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due publications: %w", err)
	}
	defer rows.Close()

	var announcements []*domain.Announcement
	for rows.Next() {
		announcement, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		announcements = append(announcements, announcement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating announcements: %w", err)
	}
	return announcements, nil
}

func (r *AnnouncementRepository) loadRevisions(ctx context.Context, announcementID string) ([]domain.Revision, error) {
	query := `
        SELECT id, title, body, audience, pinned, actor_id, created_at
        FROM announcement_revisions
        WHERE announcement_id = $1
        ORDER BY created_at, id
    `
	rows, err := r.db.QueryContext(ctx, query, announcementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query revisions: %w", err)
	}
	defer rows.Close()

	var revisions []domain.Revision
	for rows.Next() {
		var rev domain.Revision
		var title, body, audience sql.NullString
		var pinned sql.NullBool
		if err := rows.Scan(&rev.ID, &title, &body, &audience, &pinned, &rev.ActorID, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		if title.Valid {
			rev.Title = &title.String
		}
		if body.Valid {
			rev.Body = &body.String
		}
		if audience.Valid {
			a := domain.Audience(audience.String)
			rev.Audience = &a
		}
		if pinned.Valid {
			rev.Pinned = &pinned.Bool
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revisions: %w", err)
	}
	return revisions, nil
}

func insertRevision(ctx context.Context, tx *sql.Tx, announcementID string, rev domain.Revision) error {
	query := `
        INSERT INTO announcement_revisions (id, announcement_id, title, body, audience, pinned, actor_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	var audience interface{}
	if rev.Audience != nil {
		audience = string(*rev.Audience)
	}
	_, err := tx.ExecContext(ctx, query,
		rev.ID,
		announcementID,
		rev.Title,
		rev.Body,
		audience,
		rev.Pinned,
		rev.ActorID,
		rev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert revision: %w", err)
	}
	return nil
}

func scanAnnouncement(row rowScanner) (*domain.Announcement, error) {
	var announcement domain.Announcement
	var publishAt, publishedAt sql.NullTime
	err := row.Scan(
		&announcement.ID,
		&announcement.EventID,
		&announcement.Title,
		&announcement.Body,
		&announcement.Audience,
		&announcement.Pinned,
		&announcement.Status,
		&publishAt,
		&publishedAt,
		&announcement.CreatedBy,
		&announcement.UpdatedBy,
		&announcement.CreatedAt,
		&announcement.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishAt.Valid {
		announcement.PublishAt = &publishAt.Time
	}
	if publishedAt.Valid {
		announcement.PublishedAt = &publishedAt.Time
	}
	return &announcement, nil
}
