package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/handler/http/middleware"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
)

type PeriodHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Current(w http.ResponseWriter, r *http.Request)
}

type periodHandlerImpl struct {
	periodService period.PeriodService
}

func NewPeriodHandler(periodService period.PeriodService) PeriodHandler {
	return &periodHandlerImpl{periodService: periodService}
}

// Create implements PeriodHandler.
func (h *periodHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req period.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create period decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Actor = actor

	created, err := h.periodService.CreatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Reporting period created", created)
}

// Get implements PeriodHandler.
func (h *periodHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.periodService.GetPeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements PeriodHandler.
func (h *periodHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	periods, err := h.periodService.ListPeriods(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, periods, &response.Meta{TotalItems: int64(len(periods))})
}

// Current implements PeriodHandler.
func (h *periodHandlerImpl) Current(w http.ResponseWriter, r *http.Request) {
	result, err := h.periodService.CurrentPeriod(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
