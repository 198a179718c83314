package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rallydesk/rallydesk/internal/adapter/http/middleware"
	"github.com/rallydesk/rallydesk/internal/adapter/http/response"
	"github.com/rallydesk/rallydesk/internal/usecase"
)

// EntryHandler exposes the entry review actions
type EntryHandler struct {
	entries *usecase.EntryUsecase
}

func NewEntryHandler(entries *usecase.EntryUsecase) *EntryHandler {
	return &EntryHandler{entries: entries}
}

func (h *EntryHandler) Approve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entry, err := h.entries.Approve(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["entryID"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Entry approved", entry)
}

func (h *EntryHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entry, err := h.entries.MarkPaid(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["entryID"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Entry marked paid", entry)
}
