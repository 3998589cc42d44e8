package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/metrics"
	"github.com/meetinghours/attendance-backend/internal/handler/http/middleware"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
)

type MetricsHandler interface {
	GetMine(w http.ResponseWriter, r *http.Request)
	GetForUser(w http.ResponseWriter, r *http.Request)
}

type metricsHandlerImpl struct {
	metricsService metrics.MetricsService
}

func NewMetricsHandler(metricsService metrics.MetricsService) MetricsHandler {
	return &metricsHandlerImpl{metricsService: metricsService}
}

// GetMine implements MetricsHandler.
func (h *metricsHandlerImpl) GetMine(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.respond(w, r, metrics.MetricsRequest{UserID: actor.UserID, Actor: actor})
}

// GetForUser implements MetricsHandler.
func (h *metricsHandlerImpl) GetForUser(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.respond(w, r, metrics.MetricsRequest{UserID: chi.URLParam(r, "userID"), Actor: actor})
}

func (h *metricsHandlerImpl) respond(w http.ResponseWriter, r *http.Request, req metrics.MetricsRequest) {
	if periodID := r.URL.Query().Get("period_id"); periodID != "" {
		req.PeriodID = &periodID
	}

	result, err := h.metricsService.GetMetrics(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
