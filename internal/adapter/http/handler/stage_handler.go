package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rallydesk/rallydesk/internal/adapter/http/middleware"
	"github.com/rallydesk/rallydesk/internal/adapter/http/response"
	"github.com/rallydesk/rallydesk/internal/usecase"
)

// StageHandler exposes stage CRUD and lifecycle actions
type StageHandler struct {
	stages *usecase.StageUsecase
}

func NewStageHandler(stages *usecase.StageUsecase) *StageHandler {
	return &StageHandler{stages: stages}
}

func (h *StageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.EventID = mux.Vars(r)["eventID"]

	stage, err := h.stages.Create(r.Context(), middleware.ActorID(r.Context()), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Stage created", stage)
}

func (h *StageHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch usecase.StagePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	vars := mux.Vars(r)

	stage, err := h.stages.Update(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["stageID"], patch)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Stage updated", stage)
}

func (h *StageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.stages.Delete(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["stageID"]); err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Stage deleted", nil)
}

func (h *StageHandler) Start(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	stage, err := h.stages.Start(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["stageID"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Stage started", stage)
}

func (h *StageHandler) Complete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	stage, err := h.stages.Complete(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["stageID"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Stage completed", stage)
}

func (h *StageHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	stage, err := h.stages.Cancel(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["stageID"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Stage cancelled", stage)
}

func (h *StageHandler) Delay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	vars := mux.Vars(r)

	stage, err := h.stages.Delay(r.Context(), middleware.ActorID(r.Context()), vars["eventID"], vars["stageID"], body.Minutes)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Stage delayed", stage)
}
