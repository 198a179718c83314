package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
)

func TestAnnouncementCreate_Draft(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))

	announcement, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:  event.ID,
		Title:    "Recce schedule",
		Body:     "Published later.",
		Audience: domain.AudiencePublic,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AnnouncementStatusDraft, announcement.Status)
	assert.Nil(t, announcement.PublishAt)
	assert.Nil(t, announcement.PublishedAt)
	require.Len(t, announcement.Revisions, 1)
	assert.Contains(t, f.auditActions(), "announcement.create")
}

func TestAnnouncementCreate_PastPublishTimePublishesImmediately(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))

	past := baseNow.Add(-time.Hour)
	announcement, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:   event.ID,
		Title:     "Road closed",
		Audience:  domain.AudienceCompetitors,
		PublishAt: &past,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AnnouncementStatusPublished, announcement.Status)
	assert.Nil(t, announcement.PublishAt)
	require.NotNil(t, announcement.PublishedAt)
	assert.Equal(t, baseNow, *announcement.PublishedAt)
}

func TestAnnouncementCreate_FuturePublishTimeSchedules(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))

	future := baseNow.Add(2 * time.Hour)
	announcement, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:   event.ID,
		Title:     "Start list",
		Audience:  domain.AudienceOfficials,
		PublishAt: &future,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AnnouncementStatusScheduled, announcement.Status)
	require.NotNil(t, announcement.PublishAt)
	assert.Equal(t, future, *announcement.PublishAt)
	assert.Nil(t, announcement.PublishedAt)
}

func TestAnnouncementCreate_Validation(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))

	_, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:  event.ID,
		Audience: domain.AudiencePublic,
	})
	assert.Equal(t, apperror.CodeInvalidArgument, apperror.Code(err))

	_, err = f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:  event.ID,
		Title:    "Hello",
		Audience: domain.Audience("everyone"),
	})
	assert.Equal(t, apperror.CodeInvalidArgument, apperror.Code(err))
}

func TestAnnouncementUpdate_RecordsChangedFieldsOnly(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	created, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:  event.ID,
		Title:    "Original",
		Body:     "Body",
		Audience: domain.AudiencePublic,
	})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	title := "Corrected"
	updated, err := f.announceUC.Update(ctxBG(), "org-1", event.ID, created.ID, domain.AnnouncementPatch{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Corrected", updated.Title)
	assert.Equal(t, "Body", updated.Body)
	require.Len(t, updated.Revisions, 2)
	rev := updated.Revisions[1]
	require.NotNil(t, rev.Title)
	assert.Equal(t, "Corrected", *rev.Title)
	assert.Nil(t, rev.Body)
	assert.Nil(t, rev.Audience)
	assert.Nil(t, rev.Pinned)

	stored, err := f.announcements.FindByID(ctxBG(), created.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Revisions, 2)
}

func TestAnnouncementUpdate_NoopAppendsNoRevision(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	created, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:  event.ID,
		Title:    "Original",
		Audience: domain.AudiencePublic,
	})
	require.NoError(t, err)

	same := "Original"
	updated, err := f.announceUC.Update(ctxBG(), "org-1", event.ID, created.ID, domain.AnnouncementPatch{Title: &same})

	require.NoError(t, err)
	assert.Len(t, updated.Revisions, 1)
}

func TestAnnouncementUpdate_RejectsUnknownAudience(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	created, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:  event.ID,
		Title:    "Original",
		Audience: domain.AudiencePublic,
	})
	require.NoError(t, err)

	bogus := domain.Audience("vips")
	_, err = f.announceUC.Update(ctxBG(), "org-1", event.ID, created.ID, domain.AnnouncementPatch{Audience: &bogus})

	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidArgument, apperror.Code(err))
}

func TestAnnouncementPublish_ClearsSchedule(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	future := baseNow.Add(4 * time.Hour)
	created, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:   event.ID,
		Title:     "Start list",
		Audience:  domain.AudiencePublic,
		PublishAt: &future,
	})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	published, err := f.announceUC.Publish(ctxBG(), "org-1", event.ID, created.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.AnnouncementStatusPublished, published.Status)
	assert.Nil(t, published.PublishAt)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, baseNow.Add(time.Minute), *published.PublishedAt)
	// Forcing publication does not touch the revision trail.
	assert.Len(t, published.Revisions, 1)
	assert.Contains(t, f.auditActions(), "announcement.publish")
}

func TestAnnouncementPin_TogglesWithoutRevision(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	created, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:  event.ID,
		Title:    "Notice",
		Audience: domain.AudiencePublic,
	})
	require.NoError(t, err)

	pinned, err := f.announceUC.Pin(ctxBG(), "org-1", event.ID, created.ID, true)
	require.NoError(t, err)
	assert.True(t, pinned.Pinned)
	assert.Len(t, pinned.Revisions, 1)

	unpinned, err := f.announceUC.Pin(ctxBG(), "org-1", event.ID, created.ID, false)
	require.NoError(t, err)
	assert.False(t, unpinned.Pinned)
}

func TestAnnouncementPromoteDue(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))

	soon := baseNow.Add(30 * time.Minute)
	later := baseNow.Add(6 * time.Hour)
	due, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:   event.ID,
		Title:     "Due soon",
		Audience:  domain.AudiencePublic,
		PublishAt: &soon,
	})
	require.NoError(t, err)
	notYet, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:   event.ID,
		Title:     "Not yet",
		Audience:  domain.AudiencePublic,
		PublishAt: &later,
	})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	promoted, err := f.announceUC.PromoteDue(ctxBG())
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	got, err := f.announcements.FindByID(ctxBG(), due.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AnnouncementStatusPublished, got.Status)
	assert.Nil(t, got.PublishAt)
	require.NotNil(t, got.PublishedAt)
	assert.Equal(t, baseNow.Add(time.Hour), *got.PublishedAt)

	still, err := f.announcements.FindByID(ctxBG(), notYet.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AnnouncementStatusScheduled, still.Status)

	// Nothing left to promote on the next pass.
	promoted, err = f.announceUC.PromoteDue(ctxBG())
	require.NoError(t, err)
	assert.Zero(t, promoted)
}

func TestAnnouncementActions_OwnershipGuard(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	created, err := f.announceUC.Create(ctxBG(), "org-1", CreateAnnouncementRequest{
		EventID:  event.ID,
		Title:    "Notice",
		Audience: domain.AudiencePublic,
	})
	require.NoError(t, err)

	_, err = f.announceUC.Publish(ctxBG(), "", event.ID, created.ID)
	assert.Equal(t, apperror.CodeUnauthenticated, apperror.Code(err))

	_, err = f.announceUC.Publish(ctxBG(), "org-2", event.ID, created.ID)
	assert.Equal(t, apperror.CodePermissionDenied, apperror.Code(err))

	_, err = f.announceUC.Publish(ctxBG(), "org-1", event.ID, "no-such-announcement")
	assert.Equal(t, apperror.CodeNotFound, apperror.Code(err))
}
