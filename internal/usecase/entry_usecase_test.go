package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
)

func TestEntryApprove_UpdatesCountersSynchronously(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	entry := f.seedEntry(t, event.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)
	f.seedEntry(t, event.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)

	approved, err := f.entryUC.Approve(ctxBG(), "org-1", event.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusApproved, approved.Status)

	// Approve recomputes before returning; the summary already reflects it.
	summary, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Counters.PendingEntries)
	assert.Equal(t, 2, summary.Counters.UnpaidEntries)
	assert.Contains(t, f.auditActions(), "entry.approve")
}

func TestEntryMarkPaid_UpdatesCountersSynchronously(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	entry := f.seedEntry(t, event.ID, domain.EntryStatusApproved, domain.PaymentStatusUnpaid)

	paid, err := f.entryUC.MarkPaid(ctxBG(), "org-1", event.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)

	summary, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)
	assert.Zero(t, summary.Counters.UnpaidEntries)
	assert.Contains(t, f.auditActions(), "entry.mark_paid")
}

func TestEntryActions_OwnershipGuard(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	entry := f.seedEntry(t, event.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)

	_, err := f.entryUC.Approve(ctxBG(), "", event.ID, entry.ID)
	assert.Equal(t, apperror.CodeUnauthenticated, apperror.Code(err))

	_, err = f.entryUC.Approve(ctxBG(), "org-2", event.ID, entry.ID)
	assert.Equal(t, apperror.CodePermissionDenied, apperror.Code(err))

	_, err = f.entryUC.MarkPaid(ctxBG(), "org-1", event.ID, "no-such-entry")
	assert.Equal(t, apperror.CodeNotFound, apperror.Code(err))
}

func TestEntryActions_EntryFromOtherEventIsNotFound(t *testing.T) {
	f := newFixture(t)
	mine := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	other := f.seedEvent(t, "org-1", "Gravel Cup", baseNow.AddDate(0, 0, 5))
	foreign := f.seedEntry(t, other.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)

	_, err := f.entryUC.Approve(ctxBG(), "org-1", mine.ID, foreign.ID)

	require.Error(t, err)
	assert.Equal(t, apperror.CodeNotFound, apperror.Code(err))
}
