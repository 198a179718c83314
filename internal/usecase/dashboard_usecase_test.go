package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rallydesk/rallydesk/internal/domain"
)

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func TestRecompute_CountersAcrossEvents(t *testing.T) {
	f := newFixture(t)
	ev1 := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	ev2 := f.seedEvent(t, "org-1", "Gravel Cup", baseNow.AddDate(0, 0, 5))

	f.seedEntry(t, ev1.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)
	f.seedEntry(t, ev1.ID, domain.EntryStatusNew, domain.PaymentStatusPaid)
	f.seedEntry(t, ev1.ID, domain.EntryStatusApproved, domain.PaymentStatusUnpaid)
	f.seedEntry(t, ev2.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)
	f.seedEntry(t, ev2.ID, domain.EntryStatusDeclined, domain.PaymentStatusPaid)

	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-1"))

	summary, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 3, summary.Counters.PendingEntries)
	assert.Equal(t, 3, summary.Counters.UnpaidEntries)
}

func TestRecompute_TodayStagesOrderedByStartAt(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))

	day := startOfDay(baseNow)
	late := day.Add(16 * time.Hour)
	early := day.Add(8 * time.Hour)
	noon := day.Add(12 * time.Hour)
	f.seedStage(t, event.ID, "SS3", &late)
	f.seedStage(t, event.ID, "SS1", &early)
	f.seedStage(t, event.ID, "SS2", &noon)

	// Outside the window: yesterday and tomorrow.
	yesterday := day.Add(-2 * time.Hour)
	tomorrow := day.Add(26 * time.Hour)
	f.seedStage(t, event.ID, "Old", &yesterday)
	f.seedStage(t, event.ID, "Future", &tomorrow)

	// No start time at all.
	f.seedStage(t, event.ID, "Unscheduled", nil)

	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-1"))

	summary, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)
	require.Len(t, summary.TodayStages, 3)
	assert.Equal(t, "SS1", summary.TodayStages[0].Name)
	assert.Equal(t, "SS2", summary.TodayStages[1].Name)
	assert.Equal(t, "SS3", summary.TodayStages[2].Name)
	assert.Equal(t, event.Title, summary.TodayStages[0].EventTitle)
}

func TestRecompute_EventInclusionBoundary(t *testing.T) {
	f := newFixture(t)
	day := startOfDay(baseNow)

	endingAtMidnight := f.seedEvent(t, "org-1", "Ends At Midnight", day)
	endedYesterday := f.seedEvent(t, "org-1", "Ended Yesterday", day.AddDate(0, 0, -1))

	f.seedEntry(t, endingAtMidnight.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)
	f.seedEntry(t, endedYesterday.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)

	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-1"))

	summary, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)
	// Only the event ending exactly at start of day counts.
	assert.Equal(t, 1, summary.Counters.PendingEntries)
	assert.Equal(t, 1, summary.Counters.UnpaidEntries)
}

func TestRecompute_LegacyEndDateAccepted(t *testing.T) {
	f := newFixture(t)
	day := startOfDay(baseNow)

	current := f.seedLegacyEvent(t, "org-1", "Legacy Current", day.AddDate(0, 0, 1))
	expired := f.seedLegacyEvent(t, "org-1", "Legacy Expired", day.AddDate(0, 0, -2))

	f.seedEntry(t, current.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)
	f.seedEntry(t, expired.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)

	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-1"))

	summary, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Counters.PendingEntries)
}

func TestRecompute_LatestAnnouncementsTruncatedInEventOrder(t *testing.T) {
	f := newFixture(t)

	// Four events seeded in creation order. Announcements are published in
	// the reverse order, so a recency sort would flip the list; the summary
	// keeps event-iteration order and cuts after three.
	var events []*domain.Event
	for i, title := range []string{"Rally A", "Rally B", "Rally C", "Rally D"} {
		event := f.seedEvent(t, "org-1", title, baseNow.AddDate(0, 0, 3))
		event.CreatedAt = baseNow.Add(time.Duration(i) * time.Minute)
		require.NoError(t, f.events.Update(ctxBG(), event))
		events = append(events, event)
	}
	for i, event := range events {
		publishedAt := baseNow.Add(-time.Duration(i+1) * time.Hour)
		f.seedPublishedAnnouncement(t, event.ID, event.Title+" news", publishedAt)
	}

	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-1"))

	summary, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)
	require.Len(t, summary.LatestAnnouncements, 3)
	assert.Equal(t, "Rally A news", summary.LatestAnnouncements[0].Title)
	assert.Equal(t, "Rally B news", summary.LatestAnnouncements[1].Title)
	assert.Equal(t, "Rally C news", summary.LatestAnnouncements[2].Title)
}

func TestRecompute_OnlyLatestPublishedPerEvent(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))

	f.seedPublishedAnnouncement(t, event.ID, "Older", baseNow.Add(-2*time.Hour))
	f.seedPublishedAnnouncement(t, event.ID, "Newest", baseNow.Add(-time.Hour))

	// Drafts and scheduled announcements never surface.
	draft := domain.NewAnnouncement(event.ID, "Draft", "", domain.AudiencePublic, false, nil, "seed", baseNow)
	require.NoError(t, f.announcements.Create(ctxBG(), draft))

	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-1"))

	summary, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)
	require.Len(t, summary.LatestAnnouncements, 1)
	assert.Equal(t, "Newest", summary.LatestAnnouncements[0].Title)
}

func TestRecompute_Idempotent(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	day := startOfDay(baseNow)
	nine := day.Add(9 * time.Hour)
	f.seedStage(t, event.ID, "SS1", &nine)
	f.seedEntry(t, event.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)
	f.seedPublishedAnnouncement(t, event.ID, "News", baseNow.Add(-time.Hour))

	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-1"))
	first, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-1"))
	second, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)

	// Identical content modulo UpdatedAt.
	assert.Equal(t, first.TodayStages, second.TodayStages)
	assert.Equal(t, first.Counters, second.Counters)
	assert.Equal(t, first.LatestAnnouncements, second.LatestAnnouncements)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestRecompute_ConvergesUnderBackToBackRuns(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "org-1", "Forest Rally", baseNow.AddDate(0, 0, 3))
	f.seedEntry(t, event.ID, domain.EntryStatusNew, domain.PaymentStatusUnpaid)

	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-1"))
	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-1"))

	summary, err := f.summaries.FindByOrganizer(ctxBG(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Counters.PendingEntries)
	assert.Equal(t, 1, summary.Counters.UnpaidEntries)
}

func TestRecompute_EmptyOrganizerStillWritesSummary(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.dashboard.Recompute(ctxBG(), "org-none"))

	summary, err := f.summaries.FindByOrganizer(ctxBG(), "org-none")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Empty(t, summary.TodayStages)
	assert.Empty(t, summary.LatestAnnouncements)
	assert.Zero(t, summary.Counters.PendingEntries)
}
