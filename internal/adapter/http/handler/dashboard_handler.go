package handler

import (
	"net/http"

	"github.com/rallydesk/rallydesk/internal/adapter/http/middleware"
	"github.com/rallydesk/rallydesk/internal/adapter/http/response"
	"github.com/rallydesk/rallydesk/internal/apperror"
	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/internal/usecase"
)

// DashboardHandler exposes the organizer's dashboard summary
type DashboardHandler struct {
	dashboard *usecase.DashboardUsecase
	summaries ports.SummaryRepository
}

func NewDashboardHandler(dashboard *usecase.DashboardUsecase, summaries ports.SummaryRepository) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, summaries: summaries}
}

// Get returns the caller's own summary. A summary that has never been
// computed is indistinguishable from a missing one.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	organizerID := middleware.ActorID(r.Context())
	if organizerID == "" {
		response.FromError(w, apperror.Unauthenticated("no actor in request context"))
		return
	}

	summary, err := h.summaries.FindByOrganizer(r.Context(), organizerID)
	if err != nil {
		response.FromError(w, apperror.Wrap(err, "load summary"))
		return
	}
	if summary == nil {
		response.FromError(w, apperror.NotFound("DashboardSummary", organizerID))
		return
	}
	response.Success(w, http.StatusOK, "Dashboard summary", summary)
}

// Recompute rebuilds the caller's summary on demand
func (h *DashboardHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	organizerID := middleware.ActorID(r.Context())
	if organizerID == "" {
		response.FromError(w, apperror.Unauthenticated("no actor in request context"))
		return
	}

	if err := h.dashboard.Recompute(r.Context(), organizerID); err != nil {
		response.FromError(w, err)
		return
	}

	summary, err := h.summaries.FindByOrganizer(r.Context(), organizerID)
	if err != nil {
		response.FromError(w, apperror.Wrap(err, "load summary"))
		return
	}
	response.Success(w, http.StatusOK, "Dashboard recomputed", summary)
}
