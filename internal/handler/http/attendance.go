package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/handler/http/middleware"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
)

type AttendanceHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	GetForWindow(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Submit implements AttendanceHandler. The same call logs a new record or
// edits the caller's existing record for the matched window.
func (h *attendanceHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.SubmitAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit attendance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = actor.UserID

	result, err := h.attendanceService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Created {
		response.Created(w, "Attendance logged", result)
		return
	}
	response.SuccessWithMessage(w, "Attendance updated", result)
}

// GetForWindow implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetForWindow(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.GetRecordForWindow(r.Context(), actor.UserID, chi.URLParam(r, "windowID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// ListMine implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := attendance.MyRecordsFilter{UserID: actor.UserID}
	if periodID := r.URL.Query().Get("period_id"); periodID != "" {
		filter.PeriodID = &periodID
	}

	records, err := h.attendanceService.ListMyRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, records, &response.Meta{TotalItems: int64(len(records))})
}
