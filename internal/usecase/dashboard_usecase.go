package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

// latestAnnouncementLimit caps how many announcements a summary carries.
const latestAnnouncementLimit = 3

// Recomputer triggers a dashboard rebuild for one organizer
type Recomputer interface {
	Recompute(ctx context.Context, organizerID string) error
}

// DashboardUsecase rebuilds per-organizer dashboard summaries. Every rebuild
// is a full read-and-overwrite, never an incremental patch: concurrent runs
// for the same organizer converge under last-write-wins without any lock.
type DashboardUsecase struct {
	events        ports.EventRepository
	stages        ports.StageRepository
	entries       ports.EntryRepository
	announcements ports.AnnouncementRepository
	summaries     ports.SummaryRepository
	clock         ports.Clock
	log           logger.Logger
}

// NewDashboardUsecase creates a new dashboard usecase
func NewDashboardUsecase(
	events ports.EventRepository,
	stages ports.StageRepository,
	entries ports.EntryRepository,
	announcements ports.AnnouncementRepository,
	summaries ports.SummaryRepository,
	clock ports.Clock,
	log logger.Logger,
) *DashboardUsecase {
	return &DashboardUsecase{
		events:        events,
		stages:        stages,
		entries:       entries,
		announcements: announcements,
		summaries:     summaries,
		clock:         clock,
		log:           log,
	}
}

// Recompute performs a full rebuild of the organizer's dashboard summary
// from current event, stage, entry, and announcement state. Read failures
// abort the rebuild; the next trigger or sweep heals it.
func (uc *DashboardUsecase) Recompute(ctx context.Context, organizerID string) error {
	// A single fixed UTC calendar day for all organizers.
	now := uc.clock.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	events, err := uc.events.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return apperror.Wrap(err, "list events for organizer "+organizerID)
	}

	summary := &domain.DashboardSummary{
		OrganizerID:         organizerID,
		TodayStages:         []domain.StageDigest{},
		LatestAnnouncements: []domain.AnnouncementDigest{},
	}

	for _, event := range events {
		// Events are fetched by organizer only and filtered here; this
		// trades a composite index for a scan over the organizer's
		// full event history.
		if !event.EndsOnOrAfter(start) {
			continue
		}

		stages, err := uc.stages.ListByEventBetween(ctx, event.ID, start, end)
		if err != nil {
			return apperror.Wrap(err, "list today's stages for event "+event.ID)
		}
		for _, stage := range stages {
			summary.TodayStages = append(summary.TodayStages, domain.StageDigest{
				StageID:    stage.ID,
				EventID:    event.ID,
				EventTitle: event.Title,
				Name:       stage.Name,
				StartAt:    stage.StartAt,
				Status:     stage.Status,
				Location:   stage.Location,
			})
		}

		pending, err := uc.entries.CountByEventAndStatus(ctx, event.ID, domain.EntryStatusNew)
		if err != nil {
			return apperror.Wrap(err, "count pending entries for event "+event.ID)
		}
		unpaid, err := uc.entries.CountByEventAndPayment(ctx, event.ID, domain.PaymentStatusUnpaid)
		if err != nil {
			return apperror.Wrap(err, "count unpaid entries for event "+event.ID)
		}
		summary.Counters.PendingEntries += pending
		summary.Counters.UnpaidEntries += unpaid

		latest, err := uc.announcements.LatestPublishedByEvent(ctx, event.ID)
		if err != nil {
			return apperror.Wrap(err, "latest announcement for event "+event.ID)
		}
		if latest != nil {
			summary.LatestAnnouncements = append(summary.LatestAnnouncements, domain.AnnouncementDigest{
				AnnouncementID: latest.ID,
				EventID:        event.ID,
				EventTitle:     event.Title,
				Title:          latest.Title,
				Audience:       latest.Audience,
				PublishedAt:    latest.PublishedAt,
			})
		}
	}

	sort.SliceStable(summary.TodayStages, func(i, j int) bool {
		a, b := summary.TodayStages[i].StartAt, summary.TodayStages[j].StartAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.Before(*b)
	})

	// Truncated in event-iteration order, not re-sorted by recency across
	// events. See DESIGN.md.
	if len(summary.LatestAnnouncements) > latestAnnouncementLimit {
		summary.LatestAnnouncements = summary.LatestAnnouncements[:latestAnnouncementLimit]
	}

	summary.UpdatedAt = uc.clock.Now()

	if err := uc.summaries.Upsert(ctx, summary); err != nil {
		return apperror.Wrap(err, "upsert summary for organizer "+organizerID)
	}

	uc.log.Debug(ctx, "Dashboard summary recomputed", map[string]interface{}{
		"organizer_id":    organizerID,
		"today_stages":    len(summary.TodayStages),
		"pending_entries": summary.Counters.PendingEntries,
		"unpaid_entries":  summary.Counters.UnpaidEntries,
	})

	return nil
}
