package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rallydesk/rallydesk/internal/adapter/http/middleware"
	"github.com/rallydesk/rallydesk/internal/adapter/http/response"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/usecase"
)

// AnnouncementHandler exposes the announcement lifecycle
type AnnouncementHandler struct {
	announcements *usecase.AnnouncementUsecase
}

func NewAnnouncementHandler(announcements *usecase.AnnouncementUsecase) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.EventID = mux.Vars(r)["eventID"]

	announcement, err := h.announcements.Create(r.Context(), middleware.ActorID(r.Context()), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Announcement created", announcement)
}

func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.AnnouncementPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	vars := mux.Vars(r)

	announcement, err := h.announcements.Update(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["announcementID"], patch)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Announcement updated", announcement)
}

func (h *AnnouncementHandler) Publish(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	announcement, err := h.announcements.Publish(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["announcementID"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Announcement published", announcement)
}

func (h *AnnouncementHandler) Pin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pinned bool `json:"pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	vars := mux.Vars(r)

	announcement, err := h.announcements.Pin(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["announcementID"], body.Pinned)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Announcement pin updated", announcement)
}
