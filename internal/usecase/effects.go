package usecase

import (
	"context"

	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

// effects bundles the side-effect collaborators every mutating operation
// shares: audit logging, change notification, and the synchronous recompute.
// None of them may fail the primary write; failures are logged and the next
// trigger or sweep heals any staleness.
type effects struct {
	audit     ports.AuditRepository
	notifier  ports.ChangeNotifier
	dashboard Recomputer
	clock     ports.Clock
	log       logger.Logger
}

// record appends an audit entry for a mutating operation
func (e *effects) record(ctx context.Context, action, actorID, eventID, resourceType, resourceID string) {
	entry := domain.NewAuditEntry(action, actorID, eventID, resourceType, resourceID, e.clock.Now())
	if err := e.audit.Append(ctx, entry); err != nil {
		e.log.Error(ctx, "Failed to append audit entry", err, map[string]interface{}{
			"action":   action,
			"actor_id": actorID,
			"event_id": eventID,
		})
	}
}

// notify publishes a change event for the trigger router
func (e *effects) notify(ctx context.Context, event ports.ChangeEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.clock.Now()
	}
	if err := e.notifier.Publish(ctx, event); err != nil {
		e.log.Error(ctx, "Failed to publish change event", err, map[string]interface{}{
			"collection": event.Collection,
			"op":         event.Op,
			"doc_id":     event.DocID,
		})
	}
}

// recompute synchronously rebuilds the acting organizer's summary
func (e *effects) recompute(ctx context.Context, organizerID string) {
	if err := e.dashboard.Recompute(ctx, organizerID); err != nil {
		e.log.Error(ctx, "Synchronous recompute failed", err, map[string]interface{}{
			"organizer_id": organizerID,
		})
	}
}
