package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

// CreateStageRequest represents the request to create a stage
type CreateStageRequest struct {
	EventID    string     `json:"event_id"`
	Name       string     `json:"name"`
	Order      int        `json:"order"`
	StartAt    *time.Time `json:"start_at,omitempty"`
	Location   string     `json:"location,omitempty"`
	DistanceKm float64    `json:"distance_km,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// StagePatch represents a partial stage update; nil fields are left untouched
type StagePatch struct {
	Name       *string             `json:"name,omitempty"`
	Order      *int                `json:"order,omitempty"`
	StartAt    *time.Time          `json:"start_at,omitempty"`
	Location   *string             `json:"location,omitempty"`
	DistanceKm *float64            `json:"distance_km,omitempty"`
	Notes      *string             `json:"notes,omitempty"`
	Status     *domain.StageStatus `json:"status,omitempty"`
}

// StageUsecase handles stage CRUD and lifecycle actions
type StageUsecase struct {
	guard         *Guard
	stages        ports.StageRepository
	announcements ports.AnnouncementRepository
	effects
}

// NewStageUsecase creates a new stage usecase
func NewStageUsecase(
	guard *Guard,
	stages ports.StageRepository,
	announcements ports.AnnouncementRepository,
	audit ports.AuditRepository,
	notifier ports.ChangeNotifier,
	dashboard Recomputer,
	clock ports.Clock,
	log logger.Logger,
) *StageUsecase {
	return &StageUsecase{
		guard:         guard,
		stages:        stages,
		announcements: announcements,
		effects: effects{
			audit:     audit,
			notifier:  notifier,
			dashboard: dashboard,
			clock:     clock,
			log:       log,
		},
	}
}

// Create creates a new stage and announces it to competitors and officials
func (uc *StageUsecase) Create(ctx context.Context, actorID string, req CreateStageRequest) (*domain.Stage, error) {
	event, err := uc.guard.Authorize(ctx, actorID, req.EventID)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperror.InvalidArgument("stage name is required")
	}

	stage := domain.NewStage(req.EventID, req.Name, req.Order, req.StartAt, req.Location, req.DistanceKm, actorID)
	stage.Notes = req.Notes
	if err := uc.stages.Create(ctx, stage); err != nil {
		return nil, apperror.Wrap(err, "create stage")
	}

	uc.record(ctx, "stage.create", actorID, event.ID, "stage", stage.ID)
	uc.autoAnnounce(ctx, actorID, event, stage,
		fmt.Sprintf("New stage: %s", stage.Name),
		fmt.Sprintf("Stage %s has been added to %s.", stage.Name, event.Title))
	uc.notify(ctx, ports.ChangeEvent{
		Collection: ports.CollectionStages,
		Op:         ports.ChangeOpCreated,
		DocID:      stage.ID,
		EventID:    event.ID,
	})
	uc.recompute(ctx, event.OrganizerID)

	return stage, nil
}

// Update applies a partial patch to a stage. Plain updates announce nothing.
func (uc *StageUsecase) Update(ctx context.Context, actorID, eventID, stageID string, patch StagePatch) (*domain.Stage, error) {
	event, stage, err := uc.authorizeStage(ctx, actorID, eventID, stageID)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && !domain.ValidStageStatus(*patch.Status) {
		return nil, apperror.InvalidArgument(fmt.Sprintf("unrecognized stage status: %s", *patch.Status))
	}

	if patch.Name != nil {
		stage.Name = *patch.Name
	}
	if patch.Order != nil {
		stage.Order = *patch.Order
	}
	if patch.StartAt != nil {
		stage.StartAt = patch.StartAt
	}
	if patch.Location != nil {
		stage.Location = *patch.Location
	}
	if patch.DistanceKm != nil {
		stage.DistanceKm = *patch.DistanceKm
	}
	if patch.Notes != nil {
		stage.Notes = *patch.Notes
	}
	if patch.Status != nil {
		stage.Status = *patch.Status
	}
	stage.UpdatedBy = actorID
	stage.UpdatedAt = uc.clock.Now()

	if err := uc.stages.Update(ctx, stage); err != nil {
		return nil, apperror.Wrap(err, "update stage")
	}

	uc.record(ctx, "stage.update", actorID, event.ID, "stage", stage.ID)
	uc.notify(ctx, ports.ChangeEvent{
		Collection: ports.CollectionStages,
		Op:         ports.ChangeOpUpdated,
		DocID:      stage.ID,
		EventID:    event.ID,
	})
	uc.recompute(ctx, event.OrganizerID)

	return stage, nil
}

// Delete hard-deletes a stage
func (uc *StageUsecase) Delete(ctx context.Context, actorID, eventID, stageID string) error {
	event, stage, err := uc.authorizeStage(ctx, actorID, eventID, stageID)
	if err != nil {
		return err
	}

	if err := uc.stages.Delete(ctx, stage.ID); err != nil {
		return apperror.Wrap(err, "delete stage")
	}

	uc.record(ctx, "stage.delete", actorID, event.ID, "stage", stage.ID)
	uc.notify(ctx, ports.ChangeEvent{
		Collection: ports.CollectionStages,
		Op:         ports.ChangeOpDeleted,
		DocID:      stage.ID,
		EventID:    event.ID,
	})
	uc.recompute(ctx, event.OrganizerID)

	return nil
}

// Start marks a stage as ongoing
func (uc *StageUsecase) Start(ctx context.Context, actorID, eventID, stageID string) (*domain.Stage, error) {
	return uc.applyLifecycle(ctx, actorID, eventID, stageID, domain.StageActionStart, 0)
}

// Complete marks a stage as completed
func (uc *StageUsecase) Complete(ctx context.Context, actorID, eventID, stageID string) (*domain.Stage, error) {
	return uc.applyLifecycle(ctx, actorID, eventID, stageID, domain.StageActionComplete, 0)
}

// Cancel marks a stage as cancelled
func (uc *StageUsecase) Cancel(ctx context.Context, actorID, eventID, stageID string) (*domain.Stage, error) {
	return uc.applyLifecycle(ctx, actorID, eventID, stageID, domain.StageActionCancel, 0)
}

// Delay adds minutes of delay to a stage; minutes must be positive
func (uc *StageUsecase) Delay(ctx context.Context, actorID, eventID, stageID string, minutes int) (*domain.Stage, error) {
	return uc.applyLifecycle(ctx, actorID, eventID, stageID, domain.StageActionDelay, minutes)
}

// applyLifecycle validates and applies a lifecycle action, then fans out the
// audit record, the two auto-announcements, the change event, and the
// synchronous recompute.
func (uc *StageUsecase) applyLifecycle(ctx context.Context, actorID, eventID, stageID string, action domain.StageAction, minutes int) (*domain.Stage, error) {
	event, stage, err := uc.authorizeStage(ctx, actorID, eventID, stageID)
	if err != nil {
		return nil, err
	}

	if !stage.Status.CanApply(action) {
		return nil, apperror.InvalidArgument(fmt.Sprintf("action %s not allowed from status %s", action, stage.Status))
	}

	now := uc.clock.Now()
	var title, body string
	switch action {
	case domain.StageActionStart:
		stage.Start(actorID, now)
		title = fmt.Sprintf("Stage started: %s", stage.Name)
		body = fmt.Sprintf("Stage %s is now running.", stage.Name)
	case domain.StageActionComplete:
		stage.Complete(actorID, now)
		title = fmt.Sprintf("Stage completed: %s", stage.Name)
		body = fmt.Sprintf("Stage %s has finished.", stage.Name)
	case domain.StageActionCancel:
		stage.Cancel(actorID, now)
		title = fmt.Sprintf("Stage cancelled: %s", stage.Name)
		body = fmt.Sprintf("Stage %s has been cancelled.", stage.Name)
	case domain.StageActionDelay:
		if err := stage.Delay(minutes, actorID, now); err != nil {
			return nil, apperror.Wrap(err, "delay stage")
		}
		title = fmt.Sprintf("Stage delayed: %s", stage.Name)
		body = fmt.Sprintf("Stage %s has been delayed by %d minutes (total delay %d minutes).", stage.Name, minutes, stage.DelayMinutes)
		if stage.StartAt != nil {
			body += fmt.Sprintf(" New start time: %s.", stage.StartAt.Format(time.RFC3339))
		}
	default:
		return nil, apperror.InvalidArgument(fmt.Sprintf("unrecognized stage action: %s", action))
	}

	if err := uc.stages.Update(ctx, stage); err != nil {
		return nil, apperror.Wrap(err, "update stage")
	}

	uc.record(ctx, "stage."+string(action), actorID, event.ID, "stage", stage.ID)
	uc.autoAnnounce(ctx, actorID, event, stage, title, body)
	uc.notify(ctx, ports.ChangeEvent{
		Collection: ports.CollectionStages,
		Op:         ports.ChangeOpUpdated,
		DocID:      stage.ID,
		EventID:    event.ID,
	})
	uc.recompute(ctx, event.OrganizerID)

	return stage, nil
}

// autoAnnounce emits one already-published announcement per audience
// (competitors and officials) describing a stage lifecycle action.
func (uc *StageUsecase) autoAnnounce(ctx context.Context, actorID string, event *domain.Event, stage *domain.Stage, title, body string) {
	now := uc.clock.Now()
	for _, audience := range []domain.Audience{domain.AudienceCompetitors, domain.AudienceOfficials} {
		announcement := domain.NewAnnouncement(event.ID, title, body, audience, false, &now, actorID, now)
		if err := uc.announcements.Create(ctx, announcement); err != nil {
			uc.log.Error(ctx, "Failed to create auto-announcement", err, map[string]interface{}{
				"event_id": event.ID,
				"stage_id": stage.ID,
				"audience": audience,
			})
			continue
		}
		uc.notify(ctx, ports.ChangeEvent{
			Collection: ports.CollectionAnnouncements,
			Op:         ports.ChangeOpCreated,
			DocID:      announcement.ID,
			EventID:    event.ID,
		})
	}
}

// authorizeStage runs the ownership guard and resolves the stage, verifying
// it belongs to the authorized event.
func (uc *StageUsecase) authorizeStage(ctx context.Context, actorID, eventID, stageID string) (*domain.Event, *domain.Stage, error) {
	event, err := uc.guard.Authorize(ctx, actorID, eventID)
	if err != nil {
		return nil, nil, err
	}

	stage, err := uc.stages.FindByID(ctx, stageID)
	if err != nil {
		return nil, nil, apperror.Wrap(err, "stage lookup")
	}
	if stage == nil || stage.EventID != event.ID {
		return nil, nil, apperror.NotFound("Stage", stageID)
	}

	return event, stage, nil
}
