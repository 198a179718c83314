package usecase

import (
	"context"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
)

// Guard verifies that the caller owns the target event before any mutation
// proceeds. Authorization is a precondition, not a value: callers get the
// event back only so they can reuse the fetch.
type Guard struct {
	events ports.EventRepository
}

// NewGuard creates a new ownership guard
func NewGuard(events ports.EventRepository) *Guard {
	return &Guard{events: events}
}

// Authorize fails Unauthenticated when no actor is supplied, NotFound when
// the event does not exist, and PermissionDenied when the actor is not the
// event's organizer.
func (g *Guard) Authorize(ctx context.Context, actorID, eventID string) (*domain.Event, error) {
	if actorID == "" {
		return nil, apperror.Unauthenticated("mutating operations require a caller identity")
	}

	event, err := g.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, apperror.Wrap(err, "event lookup")
	}
	if event == nil {
		return nil, apperror.NotFound("Event", eventID)
	}

	if event.OrganizerID != actorID {
		return nil, apperror.PermissionDenied("actor " + actorID + " does not own event " + eventID)
	}

	return event, nil
}
