package report

import (
	"github.com/meetinghours/attendance-backend/internal/compliance"
	"github.com/meetinghours/attendance-backend/internal/domain/metrics"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

// ========================================
// PERIOD COMPLIANCE REPORT
// ========================================

type PeriodReportRequest struct {
	PeriodID string     `json:"period_id"`
	Actor    user.Actor `json:"-"`
}

func (r *PeriodReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PeriodID) {
		errs = append(errs, validator.ValidationError{
			Field:   "period_id",
			Message: "period_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodReport struct {
	Period      period.PeriodResponse `json:"period"`
	Policy      compliance.Policy     `json:"policy"`
	GeneratedAt string                `json:"generated_at"`
	Rows        []PeriodReportRow     `json:"rows"`
}

type PeriodReportRow struct {
	UserID   string                  `json:"user_id"`
	Username string                  `json:"username"`
	Email    string                  `json:"email"`
	Metrics  metrics.MetricsResponse `json:"metrics"`
	Verdict  compliance.Verdict      `json:"verdict"`
}

// ExportFile is a rendered report ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
