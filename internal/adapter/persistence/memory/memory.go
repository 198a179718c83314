// Package memory provides in-memory repository implementations backed by
// plain maps. They carry the same contracts as the PostgreSQL adapters and
// back the unit tests as well as single-binary demo runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
)

// Store holds every collection behind a single mutex
type Store struct {
	mu            sync.RWMutex
	events        map[string]*domain.Event
	stages        map[string]*domain.Stage
	entries       map[string]*domain.Entry
	announcements map[string]*domain.Announcement
	summaries     map[string]*domain.DashboardSummary
	auditLog      []*domain.AuditEntry
	users         map[string]*domain.User
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		events:        make(map[string]*domain.Event),
		stages:        make(map[string]*domain.Stage),
		entries:       make(map[string]*domain.Entry),
		announcements: make(map[string]*domain.Announcement),
		summaries:     make(map[string]*domain.DashboardSummary),
		users:         make(map[string]*domain.User),
	}
}

// Events

type EventRepository struct{ store *Store }

// NewEventRepository creates an event repository over the store
func NewEventRepository(store *Store) *EventRepository {
	return &EventRepository{store: store}
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *event
	r.store.events[event.ID] = &copied
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	event, ok := r.store.events[id]
	if !ok {
		return nil, apperror.NotFound("Event", id)
	}
	copied := *event
	return &copied, nil
}

func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.events[event.ID]; !ok {
		return apperror.NotFound("Event", event.ID)
	}
	copied := *event
	r.store.events[event.ID] = &copied
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.events[id]; !ok {
		return apperror.NotFound("Event", id)
	}
	delete(r.store.events, id)
	return nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Event
	for _, event := range r.store.events {
		if event.OrganizerID == organizerID {
			copied := *event
			out = append(out, &copied)
		}
	}
	// Map iteration order is random; a stable order keeps recomputes
	// deterministic the way an indexed store query would be.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Stages

type StageRepository struct{ store *Store }

// NewStageRepository creates a stage repository over the store
func NewStageRepository(store *Store) *StageRepository {
	return &StageRepository{store: store}
}

func (r *StageRepository) Create(ctx context.Context, stage *domain.Stage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *stage
	r.store.stages[stage.ID] = &copied
	return nil
}

func (r *StageRepository) FindByID(ctx context.Context, id string) (*domain.Stage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stage, ok := r.store.stages[id]
	if !ok {
		return nil, apperror.NotFound("Stage", id)
	}
	copied := *stage
	return &copied, nil
}

func (r *StageRepository) Update(ctx context.Context, stage *domain.Stage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.stages[stage.ID]; !ok {
		return apperror.NotFound("Stage", stage.ID)
	}
	copied := *stage
	r.store.stages[stage.ID] = &copied
	return nil
}

func (r *StageRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.stages[id]; !ok {
		return apperror.NotFound("Stage", id)
	}
	delete(r.store.stages, id)
	return nil
}

func (r *StageRepository) ListByEventBetween(ctx context.Context, eventID string, from, to time.Time) ([]*domain.Stage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Stage
	for _, stage := range r.store.stages {
		if stage.EventID != eventID || stage.StartAt == nil {
			continue
		}
		if stage.StartAt.Before(from) || !stage.StartAt.Before(to) {
			continue
		}
		copied := *stage
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(*out[j].StartAt) })
	return out, nil
}

// Entries

type EntryRepository struct{ store *Store }

// NewEntryRepository creates an entry repository over the store
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

func (r *EntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *entry
	r.store.entries[entry.ID] = &copied
	return nil
}

func (r *EntryRepository) FindByID(ctx context.Context, id string) (*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	entry, ok := r.store.entries[id]
	if !ok {
		return nil, apperror.NotFound("Entry", id)
	}
	copied := *entry
	return &copied, nil
}

func (r *EntryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.entries[entry.ID]; !ok {
		return apperror.NotFound("Entry", entry.ID)
	}
	copied := *entry
	r.store.entries[entry.ID] = &copied
	return nil
}

func (r *EntryRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Entry
	for _, entry := range r.store.entries {
		if entry.EventID == eventID {
			copied := *entry
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *EntryRepository) CountByEventAndStatus(ctx context.Context, eventID string, status domain.EntryStatus) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, entry := range r.store.entries {
		if entry.EventID == eventID && entry.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *EntryRepository) CountByEventAndPayment(ctx context.Context, eventID string, status domain.PaymentStatus) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, entry := range r.store.entries {
		if entry.EventID == eventID && entry.PaymentStatus == status {
			count++
		}
	}
	return count, nil
}

// Announcements

type AnnouncementRepository struct{ store *Store }

// NewAnnouncementRepository creates an announcement repository over the store
func NewAnnouncementRepository(store *Store) *AnnouncementRepository {
	return &AnnouncementRepository{store: store}
}

func copyAnnouncement(a *domain.Announcement) *domain.Announcement {
	copied := *a
	copied.Revisions = append([]domain.Revision(nil), a.Revisions...)
	return &copied
}

func (r *AnnouncementRepository) Create(ctx context.Context, announcement *domain.Announcement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.announcements[announcement.ID] = copyAnnouncement(announcement)
	return nil
}

func (r *AnnouncementRepository) FindByID(ctx context.Context, id string) (*domain.Announcement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	announcement, ok := r.store.announcements[id]
	if !ok {
		return nil, apperror.NotFound("Announcement", id)
	}
	return copyAnnouncement(announcement), nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, announcement *domain.Announcement, revision *domain.Revision) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.announcements[announcement.ID]; !ok {
		return apperror.NotFound("Announcement", announcement.ID)
	}
	r.store.announcements[announcement.ID] = copyAnnouncement(announcement)
	return nil
}

// ListByEvent returns every announcement of an event, oldest first
func (r *AnnouncementRepository) ListByEvent(eventID string) []*domain.Announcement {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Announcement
	for _, announcement := range r.store.announcements {
		if announcement.EventID == eventID {
			out = append(out, copyAnnouncement(announcement))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *AnnouncementRepository) LatestPublishedByEvent(ctx context.Context, eventID string) (*domain.Announcement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var latest *domain.Announcement
	for _, announcement := range r.store.announcements {
		if announcement.EventID != eventID || announcement.Status != domain.AnnouncementStatusPublished || announcement.PublishedAt == nil {
			continue
		}
		if latest == nil || announcement.PublishedAt.After(*latest.PublishedAt) {
			latest = announcement
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyAnnouncement(latest), nil
}

func (r *AnnouncementRepository) ListDuePublications(ctx context.Context, now time.Time) ([]*domain.Announcement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Announcement
	for _, announcement := range r.store.announcements {
		if announcement.Status != domain.AnnouncementStatusScheduled || announcement.PublishAt == nil {
			continue
		}
		if announcement.PublishAt.After(now) {
			continue
		}
		out = append(out, copyAnnouncement(announcement))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishAt.Before(*out[j].PublishAt) })
	return out, nil
}

// Summaries

type SummaryRepository struct{ store *Store }

// NewSummaryRepository creates a summary repository over the store
func NewSummaryRepository(store *Store) *SummaryRepository {
	return &SummaryRepository{store: store}
}

func copySummary(s *domain.DashboardSummary) *domain.DashboardSummary {
	copied := *s
	copied.TodayStages = append([]domain.StageDigest(nil), s.TodayStages...)
	copied.LatestAnnouncements = append([]domain.AnnouncementDigest(nil), s.LatestAnnouncements...)
	return &copied
}

func (r *SummaryRepository) Upsert(ctx context.Context, summary *domain.DashboardSummary) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.summaries[summary.OrganizerID] = copySummary(summary)
	return nil
}

func (r *SummaryRepository) FindByOrganizer(ctx context.Context, organizerID string) (*domain.DashboardSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	summary, ok := r.store.summaries[organizerID]
	if !ok {
		return nil, nil
	}
	return copySummary(summary), nil
}

// Audit log

type AuditRepository struct{ store *Store }

// NewAuditRepository creates an audit repository over the store
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *entry
	r.store.auditLog = append(r.store.auditLog, &copied)
	return nil
}

// Entries returns a snapshot of the audit log, oldest first
func (r *AuditRepository) Entries() []*domain.AuditEntry {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.AuditEntry, len(r.store.auditLog))
	for i, entry := range r.store.auditLog {
		copied := *entry
		out[i] = &copied
	}
	return out
}

// Users

type UserRepository struct{ store *Store }

// NewUserRepository creates a user repository over the store
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Put stores a user
func (r *UserRepository) Put(user *domain.User) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *user
	r.store.users[user.ID] = &copied
}

func (r *UserRepository) ListOrganizerIDs(ctx context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var ids []string
	for _, user := range r.store.users {
		if user.Role == domain.UserRoleOrganizer {
			ids = append(ids, user.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
