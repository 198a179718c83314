package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audience represents the visibility scope of an announcement
type Audience string

const (
	AudienceCompetitors Audience = "competitors"
	AudienceOfficials   Audience = "officials"
	AudiencePublic      Audience = "public"
)

var audiences = map[Audience]bool{
	AudienceCompetitors: true,
	AudienceOfficials:   true,
	AudiencePublic:      true,
}

// ValidAudience reports whether a is a recognized audience.
func ValidAudience(a Audience) bool {
	return audiences[a]
}

// AnnouncementStatus represents the publication status of an announcement
type AnnouncementStatus string

const (
	AnnouncementStatusDraft     AnnouncementStatus = "draft"
	AnnouncementStatusScheduled AnnouncementStatus = "scheduled"
	AnnouncementStatusPublished AnnouncementStatus = "published"
)

// Revision is an immutable content snapshot appended on create and update.
// Only the fields captured by the snapshot are set; nil means unchanged.
type Revision struct {
	ID        string    `json:"id"`
	Title     *string   `json:"title,omitempty"`
	Body      *string   `json:"body,omitempty"`
	Audience  *Audience `json:"audience,omitempty"`
	Pinned    *bool     `json:"pinned,omitempty"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Announcement represents a message published to an event's audience
type Announcement struct {
	ID        string             `json:"id"`
	EventID   string             `json:"event_id"`
	Title     string             `json:"title"`
	Body      string             `json:"body"`
	Audience  Audience           `json:"audience"`
	Pinned    bool               `json:"pinned"`
	Status    AnnouncementStatus `json:"status"`
	// PublishAt is set only while the announcement is scheduled;
	// PublishedAt only once it is published.
	PublishAt   *time.Time `json:"publish_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
	UpdatedBy   string     `json:"updated_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Revisions   []Revision `json:"revisions,omitempty"`
}

// DeriveStatus computes the initial publication status from an optional
// publish time: absent means draft, a past or current time means published,
// a future time means scheduled.
func DeriveStatus(publishAt *time.Time, now time.Time) AnnouncementStatus {
	if publishAt == nil {
		return AnnouncementStatusDraft
	}
	if !publishAt.After(now) {
		return AnnouncementStatusPublished
	}
	return AnnouncementStatusScheduled
}

// NewAnnouncement creates an announcement, deriving its status from publishAt
// and appending the initial full-content revision.
func NewAnnouncement(eventID, title, body string, audience Audience, pinned bool, publishAt *time.Time, actorID string, now time.Time) *Announcement {
	a := &Announcement{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Title:     title,
		Body:      body,
		Audience:  audience,
		Pinned:    pinned,
		Status:    DeriveStatus(publishAt, now),
		CreatedBy: actorID,
		UpdatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch a.Status {
	case AnnouncementStatusPublished:
		published := now
		a.PublishedAt = &published
	case AnnouncementStatusScheduled:
		a.PublishAt = publishAt
	}
	a.Revisions = append(a.Revisions, Revision{
		ID:        uuid.NewString(),
		Title:     &a.Title,
		Body:      &a.Body,
		Audience:  &a.Audience,
		Pinned:    &a.Pinned,
		ActorID:   actorID,
		CreatedAt: now,
	})
	return a
}

// AnnouncementPatch carries the fields of a partial update. Nil fields are
// left untouched; absent never means clear.
type AnnouncementPatch struct {
	Title    *string   `json:"title,omitempty"`
	Body     *string   `json:"body,omitempty"`
	Audience *Audience `json:"audience,omitempty"`
	Pinned   *bool     `json:"pinned,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p AnnouncementPatch) Empty() bool {
	return p.Title == nil && p.Body == nil && p.Audience == nil && p.Pinned == nil
}

// ApplyPatch applies the provided fields and appends a revision containing
// only the fields that actually changed. It returns the revision, or nil when
// nothing changed.
func (a *Announcement) ApplyPatch(patch AnnouncementPatch, actorID string, now time.Time) *Revision {
	rev := Revision{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		CreatedAt: now,
	}
	changed := false
	if patch.Title != nil && *patch.Title != a.Title {
		a.Title = *patch.Title
		rev.Title = patch.Title
		changed = true
	}
	if patch.Body != nil && *patch.Body != a.Body {
		a.Body = *patch.Body
		rev.Body = patch.Body
		changed = true
	}
	if patch.Audience != nil && *patch.Audience != a.Audience {
		a.Audience = *patch.Audience
		rev.Audience = patch.Audience
		changed = true
	}
	if patch.Pinned != nil && *patch.Pinned != a.Pinned {
		a.Pinned = *patch.Pinned
		rev.Pinned = patch.Pinned
		changed = true
	}
	a.UpdatedBy = actorID
	a.UpdatedAt = now
	if !changed {
		return nil
	}
	a.Revisions = append(a.Revisions, rev)
	return &rev
}

// Publish forces the announcement into the published state, stamps the
// publication time, and drops any pending schedule. There is no transition
// back out of published.
func (a *Announcement) Publish(actorID string, now time.Time) {
	a.Status = AnnouncementStatusPublished
	published := now
	a.PublishedAt = &published
	a.PublishAt = nil
	a.UpdatedBy = actorID
	a.UpdatedAt = now
}

// SetPinned sets the pinned flag and bumps the update metadata
func (a *Announcement) SetPinned(pinned bool, actorID string, now time.Time) {
	a.Pinned = pinned
	a.UpdatedBy = actorID
	a.UpdatedAt = now
}
