package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry represents an immutable record of a mutating operation
type AuditEntry struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	ActorID      string    `json:"actor_id"`
	EventID      string    `json:"event_id"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAuditEntry creates an audit record for a mutating operation
func NewAuditEntry(action, actorID, eventID, resourceType, resourceID string, now time.Time) *AuditEntry {
	return &AuditEntry{
		ID:           uuid.NewString(),
		Action:       action,
		ActorID:      actorID,
		EventID:      eventID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		CreatedAt:    now,
	}
}
