package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rallydesk/rallydesk/internal/adapter/bus"
	"github.com/rallydesk/rallydesk/internal/adapter/persistence/memory"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

// baseNow is the frozen reference instant every usecase test starts from.
var baseNow = time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

func ctxBG() context.Context {
	return context.Background()
}

// fakeClock is a settable clock for deterministic tests
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fixture wires the full usecase stack over the in-memory adapters
type fixture struct {
	store         *memory.Store
	events        *memory.EventRepository
	stages        *memory.StageRepository
	entries       *memory.EntryRepository
	announcements *memory.AnnouncementRepository
	summaries     *memory.SummaryRepository
	audit         *memory.AuditRepository
	users         *memory.UserRepository
	bus           *bus.InProcessBus
	clock         *fakeClock

	guard         *Guard
	dashboard     *DashboardUsecase
	stageUC       *StageUsecase
	announceUC    *AnnouncementUsecase
	entryUC       *EntryUsecase
	triggerRouter *TriggerRouter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		store:         store,
		events:        memory.NewEventRepository(store),
		stages:        memory.NewStageRepository(store),
		entries:       memory.NewEntryRepository(store),
		announcements: memory.NewAnnouncementRepository(store),
		summaries:     memory.NewSummaryRepository(store),
		audit:         memory.NewAuditRepository(store),
		users:         memory.NewUserRepository(store),
		bus:           bus.NewInProcessBus(),
		clock:         newFakeClock(baseNow),
	}

	log := logger.NewNop()
	f.guard = NewGuard(f.events)
	f.dashboard = NewDashboardUsecase(f.events, f.stages, f.entries, f.announcements, f.summaries, f.clock, log)
	f.stageUC = NewStageUsecase(f.guard, f.stages, f.announcements, f.audit, f.bus, f.dashboard, f.clock, log)
	f.announceUC = NewAnnouncementUsecase(f.guard, f.announcements, f.audit, f.bus, f.dashboard, f.clock, log)
	f.entryUC = NewEntryUsecase(f.guard, f.entries, f.audit, f.bus, f.dashboard, f.clock, log)
	f.triggerRouter = NewTriggerRouter(f.bus, f.events, f.dashboard, log)

	t.Cleanup(f.bus.Close)
	return f
}

// seedEvent stores an event ending at the given time, owned by organizerID
func (f *fixture) seedEvent(t *testing.T, organizerID, title string, endsAt time.Time) *domain.Event {
	t.Helper()
	event := domain.NewEvent(organizerID, title, endsAt.AddDate(0, 0, -2), endsAt)
	if err := f.events.Create(ctxBG(), event); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return event
}

// seedLegacyEvent stores an event carrying only the legacy end_date field
func (f *fixture) seedLegacyEvent(t *testing.T, organizerID, title string, endDate time.Time) *domain.Event {
	t.Helper()
	event := domain.NewEvent(organizerID, title, endDate, endDate)
	event.Dates = nil
	event.EndDate = &endDate
	if err := f.events.Create(ctxBG(), event); err != nil {
		t.Fatalf("seed legacy event: %v", err)
	}
	return event
}

// seedStage stores a stage for the event, optionally with a start time
func (f *fixture) seedStage(t *testing.T, eventID, name string, startAt *time.Time) *domain.Stage {
	t.Helper()
	stage := domain.NewStage(eventID, name, 1, startAt, "", 0, "seed")
	if err := f.stages.Create(ctxBG(), stage); err != nil {
		t.Fatalf("seed stage: %v", err)
	}
	return stage
}

// seedEntry stores an entry with the given statuses
func (f *fixture) seedEntry(t *testing.T, eventID string, status domain.EntryStatus, payment domain.PaymentStatus) *domain.Entry {
	t.Helper()
	entry := domain.NewEntry(eventID, "comp-1", "A. Driver", 150, "EUR")
	entry.Status = status
	entry.PaymentStatus = payment
	if err := f.entries.Create(ctxBG(), entry); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return entry
}

// seedPublishedAnnouncement stores an announcement published at the given time
func (f *fixture) seedPublishedAnnouncement(t *testing.T, eventID, title string, publishedAt time.Time) *domain.Announcement {
	t.Helper()
	announcement := domain.NewAnnouncement(eventID, title, "", domain.AudiencePublic, false, &publishedAt, "seed", publishedAt)
	if err := f.announcements.Create(ctxBG(), announcement); err != nil {
		t.Fatalf("seed announcement: %v", err)
	}
	return announcement
}
