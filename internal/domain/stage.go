package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/rallydesk/rallydesk/internal/apperror"
)

// StageStatus represents the lifecycle status of a stage
type StageStatus string

const (
	StageStatusScheduled StageStatus = "scheduled"
	StageStatusOngoing   StageStatus = "ongoing"
	StageStatusCompleted StageStatus = "completed"
	StageStatusDelayed   StageStatus = "delayed"
	StageStatusCancelled StageStatus = "cancelled"
)

// StageAction identifies a lifecycle action applied to a stage
type StageAction string

const (
	StageActionStart    StageAction = "start"
	StageActionComplete StageAction = "complete"
	StageActionCancel   StageAction = "cancel"
	StageActionDelay    StageAction = "delay"
)

var stageStatuses = map[StageStatus]bool{
	StageStatusScheduled: true,
	StageStatusOngoing:   true,
	StageStatusCompleted: true,
	StageStatusDelayed:   true,
	StageStatusCancelled: true,
}

// ValidStageStatus reports whether s is a recognized stage status.
func ValidStageStatus(s StageStatus) bool {
	return stageStatuses[s]
}

// stageTransitions is the explicit transition table for lifecycle actions.
// Every action is currently allowed from every state; tightening the policy
// is a matter of deleting entries here.
var stageTransitions = map[StageStatus]map[StageAction]bool{
	StageStatusScheduled: {StageActionStart: true, StageActionComplete: true, StageActionCancel: true, StageActionDelay: true},
	StageStatusOngoing:   {StageActionStart: true, StageActionComplete: true, StageActionCancel: true, StageActionDelay: true},
	StageStatusCompleted: {StageActionStart: true, StageActionComplete: true, StageActionCancel: true, StageActionDelay: true},
	StageStatusDelayed:   {StageActionStart: true, StageActionComplete: true, StageActionCancel: true, StageActionDelay: true},
	StageStatusCancelled: {StageActionStart: true, StageActionComplete: true, StageActionCancel: true, StageActionDelay: true},
}

// CanApply reports whether action is permitted from status s.
func (s StageStatus) CanApply(action StageAction) bool {
	allowed, ok := stageTransitions[s]
	if !ok {
		return false
	}
	return allowed[action]
}

// Stage represents a timed competition stage within an event
type Stage struct {
	ID           string      `json:"id"`
	EventID      string      `json:"event_id"`
	Name         string      `json:"name"`
	Order        int         `json:"order"`
	StartAt      *time.Time  `json:"start_at,omitempty"`
	Location     string      `json:"location,omitempty"`
	DistanceKm   float64     `json:"distance_km,omitempty"`
	Status       StageStatus `json:"status"`
	DelayMinutes int         `json:"delay_minutes"`
	Notes        string      `json:"notes,omitempty"`
	UpdatedBy    string      `json:"updated_by,omitempty"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewStage creates a new stage with the default lifecycle state
func NewStage(eventID, name string, order int, startAt *time.Time, location string, distanceKm float64, createdBy string) *Stage {
	now := time.Now()
	return &Stage{
		ID:           uuid.NewString(),
		EventID:      eventID,
		Name:         name,
		Order:        order,
		StartAt:      startAt,
		Location:     location,
		DistanceKm:   distanceKm,
		Status:       StageStatusScheduled,
		DelayMinutes: 0,
		UpdatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Start marks the stage as ongoing and records the start time
func (s *Stage) Start(actorID string, now time.Time) {
	s.Status = StageStatusOngoing
	s.StartedAt = &now
	s.UpdatedBy = actorID
	s.UpdatedAt = now
}

// Complete marks the stage as completed and records the completion time
func (s *Stage) Complete(actorID string, now time.Time) {
	s.Status = StageStatusCompleted
	s.CompletedAt = &now
	s.UpdatedBy = actorID
	s.UpdatedAt = now
}

// Cancel marks the stage as cancelled
func (s *Stage) Cancel(actorID string, now time.Time) {
	s.Status = StageStatusCancelled
	s.UpdatedBy = actorID
	s.UpdatedAt = now
}

// Delay adds minutes to the cumulative delay, shifts the start time when one
// is set, and marks the stage as delayed. Minutes must be positive.
func (s *Stage) Delay(minutes int, actorID string, now time.Time) error {
	if minutes <= 0 {
		return apperror.InvalidArgument("delay minutes must be positive")
	}
	s.DelayMinutes += minutes
	if s.StartAt != nil {
		shifted := s.StartAt.Add(time.Duration(minutes) * time.Minute)
		s.StartAt = &shifted
	}
	s.Status = StageStatusDelayed
	s.UpdatedBy = actorID
	s.UpdatedAt = now
	return nil
}
