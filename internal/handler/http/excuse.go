package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/handler/http/middleware"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
)

type ExcuseHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Request(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Deny(w http.ResponseWriter, r *http.Request)
}

type excuseHandlerImpl struct {
	excuseService excuse.ExcuseService
}

func NewExcuseHandler(excuseService excuse.ExcuseService) ExcuseHandler {
	return &excuseHandlerImpl{excuseService: excuseService}
}

// Create implements ExcuseHandler.
func (h *excuseHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req excuse.CreateExcuseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create excuse decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Actor = actor

	created, err := h.excuseService.CreateExcuse(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Excuse created", created)
}

// List implements ExcuseHandler. user_id defaults to the caller.
func (h *excuseHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := excuse.ExcuseFilter{
		UserID:   r.URL.Query().Get("user_id"),
		PeriodID: r.URL.Query().Get("period_id"),
		Actor:    actor,
	}
	if filter.UserID == "" {
		filter.UserID = actor.UserID
	}

	excuses, err := h.excuseService.ListExcuses(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, excuses, &response.Meta{TotalItems: int64(len(excuses))})
}

// Request implements ExcuseHandler.
func (h *excuseHandlerImpl) Request(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req excuse.RequestExcuseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Request excuse decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = actor.UserID

	created, err := h.excuseService.RequestExcuse(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Excuse request submitted", created)
}

// ListPending implements ExcuseHandler.
func (h *excuseHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	requests, err := h.excuseService.ListPendingRequests(r.Context(), excuse.PendingRequestFilter{Actor: actor})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, requests, &response.Meta{TotalItems: int64(len(requests))})
}

// Approve implements ExcuseHandler.
func (h *excuseHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	req, ok := reviewRequest(w, r)
	if !ok {
		return
	}

	result, err := h.excuseService.ApproveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Excuse request approved", result)
}

// Deny implements ExcuseHandler.
func (h *excuseHandlerImpl) Deny(w http.ResponseWriter, r *http.Request) {
	req, ok := reviewRequest(w, r)
	if !ok {
		return
	}

	result, err := h.excuseService.DenyRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Excuse request denied", result)
}

// reviewRequest decodes the optional admin notes body. It writes the error
// response itself and reports whether the handler should continue.
func reviewRequest(w http.ResponseWriter, r *http.Request) (excuse.ReviewRequest, bool) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return excuse.ReviewRequest{}, false
	}

	var req excuse.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Review excuse request decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return excuse.ReviewRequest{}, false
	}
	req.RequestID = chi.URLParam(r, "id")
	req.Actor = actor
	return req, true
}
