package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/report"
	"github.com/meetinghours/attendance-backend/internal/handler/http/middleware"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
)

type ReportHandler interface {
	// Period compliance report
	GetPeriodReport(w http.ResponseWriter, r *http.Request)

	// Same report as an XLSX download
	ExportPeriodReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetPeriodReport handles GET /reports/{periodID}
func (h *reportHandlerImpl) GetPeriodReport(w http.ResponseWriter, r *http.Request) {
	req, err := periodReportRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.GeneratePeriodReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportPeriodReport handles GET /reports/{periodID}/export
func (h *reportHandlerImpl) ExportPeriodReport(w http.ResponseWriter, r *http.Request) {
	req, err := periodReportRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	file, err := h.reportService.ExportPeriodReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}

func periodReportRequest(r *http.Request) (report.PeriodReportRequest, error) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		return report.PeriodReportRequest{}, err
	}
	return report.PeriodReportRequest{
		PeriodID: chi.URLParam(r, "periodID"),
		Actor:    actor,
	}, nil
}
