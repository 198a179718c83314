// Package scheduler runs the time-based backstops: the periodic all-organizer
// recompute sweep and the scheduled-announcement promotion job.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/internal/usecase"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

// Promoter promotes due scheduled announcements
type Promoter interface {
	PromoteDue(ctx context.Context) (int, error)
}

// Config holds the scheduler cadences
type Config struct {
	// SweepInterval is how often every organizer's summary is rebuilt.
	SweepInterval time.Duration
	// BackstopInterval is the redundant low-frequency sweep.
	BackstopInterval time.Duration
	// PromoteInterval is how often due scheduled announcements are
	// promoted; tighter than the sweep because publish-time accuracy
	// matters more than summary freshness.
	PromoteInterval time.Duration
}

// DefaultConfig returns the standard cadences
func DefaultConfig() Config {
	return Config{
		SweepInterval:    15 * time.Minute,
		BackstopInterval: 24 * time.Hour,
		PromoteInterval:  5 * time.Minute,
	}
}

// Scheduler drives the sweep and promotion loops
type Scheduler struct {
	config    Config
	users     ports.UserRepository
	dashboard usecase.Recomputer
	promoter  Promoter
	log       logger.Logger
	wg        sync.WaitGroup
}

// New creates a new scheduler
func New(config Config, users ports.UserRepository, dashboard usecase.Recomputer, promoter Promoter, log logger.Logger) *Scheduler {
	return &Scheduler{
		config:    config,
		users:     users,
		dashboard: dashboard,
		promoter:  promoter,
		log:       log,
	}
}

// Start launches the loops; they stop when the context is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(2)
	go s.sweepLoop(ctx)
	go s.promoteLoop(ctx)
}

// Wait blocks until every loop has exited
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	sweep := time.NewTicker(s.config.SweepInterval)
	defer sweep.Stop()
	backstop := time.NewTicker(s.config.BackstopInterval)
	defer backstop.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			s.SweepOnce(ctx)
		case <-backstop.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Scheduler) promoteLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PromoteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PromoteOnce(ctx)
		}
	}
}

// SweepOnce recomputes every organizer's summary. A failing organizer is
// logged and skipped; the sweep itself never aborts early, so one bad
// organizer cannot starve the rest.
func (s *Scheduler) SweepOnce(ctx context.Context) {
	organizerIDs, err := s.users.ListOrganizerIDs(ctx)
	if err != nil {
		s.log.Error(ctx, "Sweep failed to list organizers", err, nil)
		return
	}

	failed := 0
	for _, organizerID := range organizerIDs {
		if ctx.Err() != nil {
			return
		}
		if err := s.dashboard.Recompute(ctx, organizerID); err != nil {
			failed++
			s.log.Error(ctx, "Sweep recompute failed", err, map[string]interface{}{
				"organizer_id": organizerID,
			})
		}
	}

	s.log.Info(ctx, "Recompute sweep finished", map[string]interface{}{
		"organizers": len(organizerIDs),
		"failed":     failed,
	})
}

// PromoteOnce promotes every due scheduled announcement
func (s *Scheduler) PromoteOnce(ctx context.Context) {
	promoted, err := s.promoter.PromoteDue(ctx)
	if err != nil {
		s.log.Error(ctx, "Announcement promotion failed", err, nil)
		return
	}
	if promoted > 0 {
		s.log.Info(ctx, "Scheduled announcements promoted", map[string]interface{}{
			"promoted": promoted,
		})
	}
}
