package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/handler/http/middleware"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
)

type WindowHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListUpcoming(w http.ResponseWriter, r *http.Request)
}

type windowHandlerImpl struct {
	windowService window.WindowService
}

func NewWindowHandler(windowService window.WindowService) WindowHandler {
	return &windowHandlerImpl{windowService: windowService}
}

// Create implements WindowHandler.
func (h *windowHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req window.CreateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create window decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Actor = actor

	created, err := h.windowService.CreateWindow(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Time window created", created)
}

// Get implements WindowHandler.
func (h *windowHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.windowService.GetWindow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements WindowHandler.
func (h *windowHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter window.WindowFilter
	if v := query.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := query.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	if v := query.Get("category"); v != "" {
		filter.Category = &v
	}

	windows, err := h.windowService.ListWindows(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, windows, &response.Meta{TotalItems: int64(len(windows))})
}

// ListUpcoming implements WindowHandler.
func (h *windowHandlerImpl) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter window.UpcomingFilter
	if d := query.Get("days"); d != "" {
		days, err := strconv.Atoi(d)
		if err != nil {
			response.BadRequest(w, "days must be a number", nil)
			return
		}
		filter.Days = days
	}
	if v := query.Get("category"); v != "" {
		filter.Category = &v
	}

	windows, err := h.windowService.ListUpcoming(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, windows, &response.Meta{TotalItems: int64(len(windows))})
}
