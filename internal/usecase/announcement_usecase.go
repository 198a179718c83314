package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

// CreateAnnouncementRequest represents the request to create an announcement
type CreateAnnouncementRequest struct {
	EventID   string          `json:"event_id"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Audience  domain.Audience `json:"audience"`
	Pinned    bool            `json:"pinned"`
	PublishAt *time.Time      `json:"publish_at,omitempty"`
}

// AnnouncementUsecase handles the announcement publication lifecycle
type AnnouncementUsecase struct {
	guard         *Guard
	announcements ports.AnnouncementRepository
	effects
}

// NewAnnouncementUsecase creates a new announcement usecase
func NewAnnouncementUsecase(
	guard *Guard,
	announcements ports.AnnouncementRepository,
	audit ports.AuditRepository,
	notifier ports.ChangeNotifier,
	dashboard Recomputer,
	clock ports.Clock,
	log logger.Logger,
) *AnnouncementUsecase {
	return &AnnouncementUsecase{
		guard:         guard,
		announcements: announcements,
		effects: effects{
			audit:     audit,
			notifier:  notifier,
			dashboard: dashboard,
			clock:     clock,
			log:       log,
		},
	}
}

// Create creates an announcement, deriving its publication status from the
// optional publish time: absent means draft, past or present means published
// immediately, future means scheduled.
func (uc *AnnouncementUsecase) Create(ctx context.Context, actorID string, req CreateAnnouncementRequest) (*domain.Announcement, error) {
	event, err := uc.guard.Authorize(ctx, actorID, req.EventID)
	if err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, apperror.InvalidArgument("announcement title is required")
	}
	if !domain.ValidAudience(req.Audience) {
		return nil, apperror.InvalidArgument(fmt.Sprintf("unrecognized audience: %s", req.Audience))
	}

	// Body is normalized to the empty string, never absent.
	announcement := domain.NewAnnouncement(event.ID, req.Title, req.Body, req.Audience, req.Pinned, req.PublishAt, actorID, uc.clock.Now())
	if err := uc.announcements.Create(ctx, announcement); err != nil {
		return nil, apperror.Wrap(err, "create announcement")
	}

	uc.record(ctx, "announcement.create", actorID, event.ID, "announcement", announcement.ID)
	uc.notify(ctx, ports.ChangeEvent{
		Collection: ports.CollectionAnnouncements,
		Op:         ports.ChangeOpCreated,
		DocID:      announcement.ID,
		EventID:    event.ID,
	})
	uc.recompute(ctx, event.OrganizerID)

	return announcement, nil
}

// Update applies a partial patch; only fields explicitly provided change,
// and the revision trail records exactly the fields that changed.
func (uc *AnnouncementUsecase) Update(ctx context.Context, actorID, eventID, announcementID string, patch domain.AnnouncementPatch) (*domain.Announcement, error) {
	event, announcement, err := uc.authorizeAnnouncement(ctx, actorID, eventID, announcementID)
	if err != nil {
		return nil, err
	}

	if patch.Audience != nil && !domain.ValidAudience(*patch.Audience) {
		return nil, apperror.InvalidArgument(fmt.Sprintf("unrecognized audience: %s", *patch.Audience))
	}

	revision := announcement.ApplyPatch(patch, actorID, uc.clock.Now())
	if err := uc.announcements.Update(ctx, announcement, revision); err != nil {
		return nil, apperror.Wrap(err, "update announcement")
	}

	uc.record(ctx, "announcement.update", actorID, event.ID, "announcement", announcement.ID)
	uc.notify(ctx, ports.ChangeEvent{
		Collection: ports.CollectionAnnouncements,
		Op:         ports.ChangeOpUpdated,
		DocID:      announcement.ID,
		EventID:    event.ID,
	})
	uc.recompute(ctx, event.OrganizerID)

	return announcement, nil
}

// Publish forces an announcement into the published state immediately
func (uc *AnnouncementUsecase) Publish(ctx context.Context, actorID, eventID, announcementID string) (*domain.Announcement, error) {
	event, announcement, err := uc.authorizeAnnouncement(ctx, actorID, eventID, announcementID)
	if err != nil {
		return nil, err
	}

	announcement.Publish(actorID, uc.clock.Now())
	if err := uc.announcements.Update(ctx, announcement, nil); err != nil {
		return nil, apperror.Wrap(err, "publish announcement")
	}

	uc.record(ctx, "announcement.publish", actorID, event.ID, "announcement", announcement.ID)
	uc.notify(ctx, ports.ChangeEvent{
		Collection: ports.CollectionAnnouncements,
		Op:         ports.ChangeOpUpdated,
		DocID:      announcement.ID,
		EventID:    event.ID,
	})
	uc.recompute(ctx, event.OrganizerID)

	return announcement, nil
}

// Pin sets the pinned flag
func (uc *AnnouncementUsecase) Pin(ctx context.Context, actorID, eventID, announcementID string, pinned bool) (*domain.Announcement, error) {
	event, announcement, err := uc.authorizeAnnouncement(ctx, actorID, eventID, announcementID)
	if err != nil {
		return nil, err
	}

	announcement.SetPinned(pinned, actorID, uc.clock.Now())
	if err := uc.announcements.Update(ctx, announcement, nil); err != nil {
		return nil, apperror.Wrap(err, "pin announcement")
	}

	uc.record(ctx, "announcement.pin", actorID, event.ID, "announcement", announcement.ID)
	uc.notify(ctx, ports.ChangeEvent{
		Collection: ports.CollectionAnnouncements,
		Op:         ports.ChangeOpUpdated,
		DocID:      announcement.ID,
		EventID:    event.ID,
	})
	uc.recompute(ctx, event.OrganizerID)

	return announcement, nil
}

// PromoteDue promotes every scheduled announcement whose publish time has
// arrived. It emits change events but never recomputes directly; the trigger
// router reacts to the writes. Returns the number promoted.
func (uc *AnnouncementUsecase) PromoteDue(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	due, err := uc.announcements.ListDuePublications(ctx, now)
	if err != nil {
		return 0, apperror.Wrap(err, "list due publications")
	}

	promoted := 0
	for _, announcement := range due {
		announcement.Publish(announcement.UpdatedBy, now)
		if err := uc.announcements.Update(ctx, announcement, nil); err != nil {
			uc.log.Error(ctx, "Failed to promote scheduled announcement", err, map[string]interface{}{
				"announcement_id": announcement.ID,
				"event_id":        announcement.EventID,
			})
			continue
		}
		promoted++
		uc.notify(ctx, ports.ChangeEvent{
			Collection: ports.CollectionAnnouncements,
			Op:         ports.ChangeOpUpdated,
			DocID:      announcement.ID,
			EventID:    announcement.EventID,
		})
	}

	return promoted, nil
}

// authorizeAnnouncement runs the ownership guard and resolves the
// announcement, verifying it belongs to the authorized event.
func (uc *AnnouncementUsecase) authorizeAnnouncement(ctx context.Context, actorID, eventID, announcementID string) (*domain.Event, *domain.Announcement, error) {
	event, err := uc.guard.Authorize(ctx, actorID, eventID)
	if err != nil {
		return nil, nil, err
	}

	announcement, err := uc.announcements.FindByID(ctx, announcementID)
	if err != nil {
		return nil, nil, apperror.Wrap(err, "announcement lookup")
	}
	if announcement == nil || announcement.EventID != event.ID {
		return nil, nil, apperror.NotFound("Announcement", announcementID)
	}

	return event, announcement, nil
}
