package usecase

import (
	"context"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

// TriggerRouter reacts to document writes by recomputing the dashboard of
// every organizer the write could affect. It also covers writes made by
// paths outside this service, as long as they reach the change feed.
type TriggerRouter struct {
	subscriber ports.ChangeSubscriber
	events     ports.EventRepository
	dashboard  Recomputer
	log        logger.Logger
}

// NewTriggerRouter creates a new trigger router
func NewTriggerRouter(
	subscriber ports.ChangeSubscriber,
	events ports.EventRepository,
	dashboard Recomputer,
	log logger.Logger,
) *TriggerRouter {
	return &TriggerRouter{
		subscriber: subscriber,
		events:     events,
		dashboard:  dashboard,
		log:        log,
	}
}

// Run consumes the change feed until the context is cancelled or the feed
// closes.
func (r *TriggerRouter) Run(ctx context.Context) error {
	feed, err := r.subscriber.Subscribe(ctx)
	if err != nil {
		return apperror.Wrap(err, "subscribe to change feed")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-feed:
			if !ok {
				return nil
			}
			r.Handle(ctx, change)
		}
	}
}

// Handle routes a single change event to the recompute engine
func (r *TriggerRouter) Handle(ctx context.Context, change ports.ChangeEvent) {
	for _, organizerID := range r.resolveOrganizers(ctx, change) {
		if err := r.dashboard.Recompute(ctx, organizerID); err != nil {
			r.log.Error(ctx, "Triggered recompute failed", err, map[string]interface{}{
				"organizer_id": organizerID,
				"collection":   change.Collection,
				"doc_id":       change.DocID,
			})
		}
	}
}

// resolveOrganizers maps a change event onto the affected organizer IDs.
// Event writes recompute every distinct organizer seen in the before and
// after versions, which covers organizer reassignment. Sub-entity writes
// resolve through the owning event; a write whose event is already gone is
// dropped.
func (r *TriggerRouter) resolveOrganizers(ctx context.Context, change ports.ChangeEvent) []string {
	if change.Collection == ports.CollectionEvents {
		var ids []string
		if change.BeforeOrganizerID != "" {
			ids = append(ids, change.BeforeOrganizerID)
		}
		if change.AfterOrganizerID != "" && change.AfterOrganizerID != change.BeforeOrganizerID {
			ids = append(ids, change.AfterOrganizerID)
		}
		return ids
	}

	event, err := r.events.FindByID(ctx, change.EventID)
	if err != nil {
		if apperror.Code(err) == apperror.CodeNotFound {
			r.log.Debug(ctx, "Change event for a vanished event dropped", map[string]interface{}{
				"collection": change.Collection,
				"doc_id":     change.DocID,
				"event_id":   change.EventID,
			})
			return nil
		}
		r.log.Error(ctx, "Failed to resolve owning event", err, map[string]interface{}{
			"collection": change.Collection,
			"event_id":   change.EventID,
		})
		return nil
	}
	if event == nil {
		return nil
	}

	return []string{event.OrganizerID}
}
