// Package http wires the REST surface: router, middleware and handlers.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rallydesk/rallydesk/internal/adapter/http/handler"
	"github.com/rallydesk/rallydesk/internal/adapter/http/middleware"
	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/internal/usecase"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

// RouterDeps carries everything the router needs
type RouterDeps struct {
	Stages        *usecase.StageUsecase
	Announcements *usecase.AnnouncementUsecase
	Entries       *usecase.EntryUsecase
	Dashboard     *usecase.DashboardUsecase
	Summaries     ports.SummaryRepository
	JWTSecret     string
	Log           logger.Logger
}

// NewRouter builds the full route table
func NewRouter(deps RouterDeps) *mux.Router {
	auth := middleware.NewAuthMiddleware(deps.JWTSecret)
	stageHandler := handler.NewStageHandler(deps.Stages)
	announcementHandler := handler.NewAnnouncementHandler(deps.Announcements)
	entryHandler := handler.NewEntryHandler(deps.Entries)
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard, deps.Summaries)

	router := mux.NewRouter()
	router.Use(middleware.Recovery(deps.Log))
	router.Use(middleware.RequestLogger(deps.Log))

	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/events/{eventID}/stages", auth.RequireActor(stageHandler.Create)).Methods(http.MethodPost)
	api.HandleFunc("/events/{eventID}/stages/{stageID}", auth.RequireActor(stageHandler.Update)).Methods(http.MethodPatch)
	api.HandleFunc("/events/{eventID}/stages/{stageID}", auth.RequireActor(stageHandler.Delete)).Methods(http.MethodDelete)
	api.HandleFunc("/events/{eventID}/stages/{stageID}/start", auth.RequireActor(stageHandler.Start)).Methods(http.MethodPost)
	api.HandleFunc("/events/{eventID}/stages/{stageID}/complete", auth.RequireActor(stageHandler.Complete)).Methods(http.MethodPost)
	api.HandleFunc("/events/{eventID}/stages/{stageID}/cancel", auth.RequireActor(stageHandler.Cancel)).Methods(http.MethodPost)
	api.HandleFunc("/events/{eventID}/stages/{stageID}/delay", auth.RequireActor(stageHandler.Delay)).Methods(http.MethodPost)

	api.HandleFunc("/events/{eventID}/entries/{entryID}/approve", auth.RequireActor(entryHandler.Approve)).Methods(http.MethodPost)
	api.HandleFunc("/events/{eventID}/entries/{entryID}/pay", auth.RequireActor(entryHandler.MarkPaid)).Methods(http.MethodPost)

	api.HandleFunc("/events/{eventID}/announcements", auth.RequireActor(announcementHandler.Create)).Methods(http.MethodPost)
	api.HandleFunc("/events/{eventID}/announcements/{announcementID}", auth.RequireActor(announcementHandler.Update)).Methods(http.MethodPatch)
	api.HandleFunc("/events/{eventID}/announcements/{announcementID}/publish", auth.RequireActor(announcementHandler.Publish)).Methods(http.MethodPost)
	api.HandleFunc("/events/{eventID}/announcements/{announcementID}/pin", auth.RequireActor(announcementHandler.Pin)).Methods(http.MethodPost)

	api.HandleFunc("/dashboard", auth.RequireActor(dashboardHandler.Get)).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/recompute", auth.RequireActor(dashboardHandler.Recompute)).Methods(http.MethodPost)

	return router
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
