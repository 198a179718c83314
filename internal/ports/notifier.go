package ports

import (
	"context"
	"time"
)

// Collection identifies a watched document collection
type Collection string

const (
	CollectionEvents        Collection = "events"
	CollectionStages        Collection = "stages"
	CollectionEntries       Collection = "entries"
	CollectionAnnouncements Collection = "announcements"
)

// ChangeOp identifies the kind of write that occurred
type ChangeOp string

const (
	ChangeOpCreated ChangeOp = "created"
	ChangeOpUpdated ChangeOp = "updated"
	ChangeOpDeleted ChangeOp = "deleted"
)

// ChangeEvent describes a write to a watched document. For writes to the
// events collection the before/after organizer IDs carry ownership across a
// possible reassignment; for sub-entity writes EventID identifies the owning
// event.
type ChangeEvent struct {
	Collection        Collection `json:"collection"`
	Op                ChangeOp   `json:"op"`
	DocID             string     `json:"doc_id"`
	EventID           string     `json:"event_id,omitempty"`
	BeforeOrganizerID string     `json:"before_organizer_id,omitempty"`
	AfterOrganizerID  string     `json:"after_organizer_id,omitempty"`
	OccurredAt        time.Time  `json:"occurred_at"`
}

// ChangeNotifier publishes document-change notifications
type ChangeNotifier interface {
	// Publish emits a change event to all subscribers
	Publish(ctx context.Context, event ChangeEvent) error
}

// ChangeSubscriber consumes document-change notifications
type ChangeSubscriber interface {
	// Subscribe returns a channel of change events. The channel is closed
	// when the subscription ends.
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}
