package ports

import (
	"context"
	"time"

	"github.com/rallydesk/rallydesk/internal/domain"
)

// EventRepository defines the interface for event persistence
type EventRepository interface {
	// Create saves a new event
	Create(ctx context.Context, event *domain.Event) error

	// FindByID retrieves an event by its ID
	FindByID(ctx context.Context, id string) (*domain.Event, error)

	// Update updates an existing event
	Update(ctx context.Context, event *domain.Event) error

	// Delete removes an event
	Delete(ctx context.Context, id string) error

	// ListByOrganizer retrieves every event owned by the organizer.
	// Deliberately a single-field query; date filtering happens in memory.
	ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error)
}

// StageRepository defines the interface for stage persistence
type StageRepository interface {
	// Create saves a new stage
	Create(ctx context.Context, stage *domain.Stage) error

	// FindByID retrieves a stage by its ID
	FindByID(ctx context.Context, id string) (*domain.Stage, error)

	// Update updates an existing stage
	Update(ctx context.Context, stage *domain.Stage) error

	// Delete removes a stage
	Delete(ctx context.Context, id string) error

	// ListByEventBetween retrieves stages of an event whose start time falls
	// in [from, to), ordered by start time. Stages without a start time are
	// not matched.
	ListByEventBetween(ctx context.Context, eventID string, from, to time.Time) ([]*domain.Stage, error)
}

// EntryRepository defines the interface for entry persistence
type EntryRepository interface {
	// Create saves a new entry
	Create(ctx context.Context, entry *domain.Entry) error

	// FindByID retrieves an entry by its ID
	FindByID(ctx context.Context, id string) (*domain.Entry, error)

	// Update updates an existing entry
	Update(ctx context.Context, entry *domain.Entry) error

	// ListByEvent retrieves all entries of an event
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Entry, error)

	// CountByEventAndStatus counts entries of an event with the given status
	CountByEventAndStatus(ctx context.Context, eventID string, status domain.EntryStatus) (int, error)

	// CountByEventAndPayment counts entries of an event with the given payment status
	CountByEventAndPayment(ctx context.Context, eventID string, status domain.PaymentStatus) (int, error)
}

// AnnouncementRepository defines the interface for announcement persistence
type AnnouncementRepository interface {
	// Create saves a new announcement together with its revisions
	Create(ctx context.Context, announcement *domain.Announcement) error

	// FindByID retrieves an announcement by its ID, revisions included
	FindByID(ctx context.Context, id string) (*domain.Announcement, error)

	// Update updates an existing announcement; a non-nil revision is
	// appended to its revision trail
	Update(ctx context.Context, announcement *domain.Announcement, revision *domain.Revision) error

	// LatestPublishedByEvent retrieves the single most recently published
	// announcement of an event, or nil when the event has none
	LatestPublishedByEvent(ctx context.Context, eventID string) (*domain.Announcement, error)

	// ListDuePublications retrieves scheduled announcements across all
	// events whose publish time is at or before now
	ListDuePublications(ctx context.Context, now time.Time) ([]*domain.Announcement, error)
}

// SummaryRepository defines the interface for dashboard summary persistence
type SummaryRepository interface {
	// Upsert overwrites the organizer's summary with the given projection
	Upsert(ctx context.Context, summary *domain.DashboardSummary) error

	// FindByOrganizer retrieves the organizer's summary, or nil when no
	// recompute has run yet
	FindByOrganizer(ctx context.Context, organizerID string) (*domain.DashboardSummary, error)
}

// AuditRepository defines the interface for audit log persistence
type AuditRepository interface {
	// Append appends an immutable audit record
	Append(ctx context.Context, entry *domain.AuditEntry) error
}

// UserRepository defines the interface for user lookups
type UserRepository interface {
	// ListOrganizerIDs retrieves the IDs of every user with the organizer role
	ListOrganizerIDs(ctx context.Context) ([]string, error)
}
