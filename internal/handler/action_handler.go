package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"pocket-mini-server/internal/domain"
	"pocket-mini-server/internal/middleware"
	"pocket-mini-server/internal/service"
	"pocket-mini-server/pkg/response"

	"github.com/gorilla/mux"
)

type ActionHandler struct {
	service *service.ActionService
}

func NewActionHandler(service *service.ActionService) *ActionHandler {
	return &ActionHandler{
		service: service,
	}
}

func (h *ActionHandler) Increment(w http.ResponseWriter, r *http.Request) {
	state := h.service.Increment(middleware.GetStore(r))
	response.Success(w, &domain.ActionResponse{State: state})
}

func (h *ActionHandler) ResetCounter(w http.ResponseWriter, r *http.Request) {
	state := h.service.ResetCounter(middleware.GetStore(r))
	response.Success(w, &domain.ActionResponse{State: state})
}

func (h *ActionHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req domain.AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	state := h.service.AddNote(middleware.GetStore(r), req.Text)
	response.Success(w, &domain.ActionResponse{State: state})
}

func (h *ActionHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseFloat(mux.Vars(r)["id"], 64)
	if err != nil || math.IsNaN(id) || math.IsInf(id, 0) {
		response.BadRequest(w, "Note ID must be a number")
		return
	}

	state := h.service.DeleteNote(middleware.GetStore(r), id)
	response.Success(w, &domain.ActionResponse{State: state, Refresh: true})
}

func (h *ActionHandler) NextRound(w http.ResponseWriter, r *http.Request) {
	state := h.service.NextRound(middleware.GetStore(r))
	response.Success(w, &domain.ActionResponse{State: state})
}

func (h *ActionHandler) ResetGame(w http.ResponseWriter, r *http.Request) {
	state := h.service.ResetGame(middleware.GetStore(r))
	response.Success(w, &domain.ActionResponse{State: state})
}
