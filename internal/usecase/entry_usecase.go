package usecase

import (
	"context"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

// EntryUsecase handles the entry review operations exposed to organizers
type EntryUsecase struct {
	guard   *Guard
	entries ports.EntryRepository
	effects
}

// NewEntryUsecase creates a new entry usecase
func NewEntryUsecase(
	guard *Guard,
	entries ports.EntryRepository,
	audit ports.AuditRepository,
	notifier ports.ChangeNotifier,
	dashboard Recomputer,
	clock ports.Clock,
	log logger.Logger,
) *EntryUsecase {
	return &EntryUsecase{
		guard:   guard,
		entries: entries,
		effects: effects{
			audit:     audit,
			notifier:  notifier,
			dashboard: dashboard,
			clock:     clock,
			log:       log,
		},
	}
}

// Approve marks an entry as approved
func (uc *EntryUsecase) Approve(ctx context.Context, actorID, eventID, entryID string) (*domain.Entry, error) {
	event, entry, err := uc.authorizeEntry(ctx, actorID, eventID, entryID)
	if err != nil {
		return nil, err
	}

	entry.Approve(uc.clock.Now())
	if err := uc.entries.Update(ctx, entry); err != nil {
		return nil, apperror.Wrap(err, "approve entry")
	}

	uc.record(ctx, "entry.approve", actorID, event.ID, "entry", entry.ID)
	uc.notify(ctx, ports.ChangeEvent{
		Collection: ports.CollectionEntries,
		Op:         ports.ChangeOpUpdated,
		DocID:      entry.ID,
		EventID:    event.ID,
	})
	uc.recompute(ctx, event.OrganizerID)

	return entry, nil
}

// MarkPaid marks an entry's fee as paid
func (uc *EntryUsecase) MarkPaid(ctx context.Context, actorID, eventID, entryID string) (*domain.Entry, error) {
	event, entry, err := uc.authorizeEntry(ctx, actorID, eventID, entryID)
	if err != nil {
		return nil, err
	}

	entry.MarkPaid(uc.clock.Now())
	if err := uc.entries.Update(ctx, entry); err != nil {
		return nil, apperror.Wrap(err, "mark entry paid")
	}

	uc.record(ctx, "entry.mark_paid", actorID, event.ID, "entry", entry.ID)
	uc.notify(ctx, ports.ChangeEvent{
		Collection: ports.CollectionEntries,
		Op:         ports.ChangeOpUpdated,
		DocID:      entry.ID,
		EventID:    event.ID,
	})
	uc.recompute(ctx, event.OrganizerID)

	return entry, nil
}

// authorizeEntry runs the ownership guard and resolves the entry, verifying
// it belongs to the authorized event.
func (uc *EntryUsecase) authorizeEntry(ctx context.Context, actorID, eventID, entryID string) (*domain.Event, *domain.Entry, error) {
	event, err := uc.guard.Authorize(ctx, actorID, eventID)
	if err != nil {
		return nil, nil, err
	}

	entry, err := uc.entries.FindByID(ctx, entryID)
	if err != nil {
		return nil, nil, apperror.Wrap(err, "entry lookup")
	}
	if entry == nil || entry.EventID != event.ID {
		return nil, nil, apperror.NotFound("Entry", entryID)
	}

	return event, entry, nil
}
