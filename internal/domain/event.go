package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateRange represents the scheduled date range of an event
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Event represents a rally event owned by a single organizer
type Event struct {
	ID          string     `json:"id"`
	OrganizerID string     `json:"organizer_id"`
	Title       string     `json:"title"`
	Dates       *DateRange `json:"dates,omitempty"`
	// EndDate is the legacy single end-date field still carried by older
	// documents. Read the end date through End, not this field.
	EndDate   *time.Time `json:"end_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewEvent creates a new event
func NewEvent(organizerID, title string, from, to time.Time) *Event {
	now := time.Now()
	return &Event{
		ID:          uuid.NewString(),
		OrganizerID: organizerID,
		Title:       title,
		Dates:       &DateRange{From: from, To: to},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// End returns the event's end date, preferring dates.to and falling back to
// the legacy end_date field. The second return value is false when neither
// field is present.
func (e *Event) End() (time.Time, bool) {
	if e.Dates != nil && !e.Dates.To.IsZero() {
		return e.Dates.To, true
	}
	if e.EndDate != nil && !e.EndDate.IsZero() {
		return *e.EndDate, true
	}
	return time.Time{}, false
}

// EndsOnOrAfter reports whether the event has not yet concluded relative to t.
// An event with no end date at all is treated as not concluded.
func (e *Event) EndsOnOrAfter(t time.Time) bool {
	end, ok := e.End()
	if !ok {
		return true
	}
	return !end.Before(t)
}
