package metrics

import (
	"math"

	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

type MetricsRequest struct {
	UserID   string     `json:"user_id"`
	PeriodID *string    `json:"period_id,omitempty"` // defaults to the current period
	Actor    user.Actor `json:"-"`
}

func (r *MetricsRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if r.PeriodID != nil && validator.IsEmpty(*r.PeriodID) {
		r.PeriodID = nil
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RegularMetrics struct {
	Percentage     Percentage `json:"percentage"`
	AttendedHours  float64    `json:"attended_hours"`
	TotalHours     float64    `json:"total_hours"`
	ExcusedHours   float64    `json:"excused_hours"`
	EffectiveHours float64    `json:"effective_hours"`
	WindowCount    int        `json:"window_count"`
	AttendedCount  int        `json:"attended_count"`
	ExcusedCount   int        `json:"excused_count"`
}

type OutreachMetrics struct {
	AttendedHours float64 `json:"attended_hours"`
	TotalHours    float64 `json:"total_hours"`
	WindowCount   int     `json:"window_count"`
}

type MetricsResponse struct {
	UserID   string          `json:"user_id"`
	PeriodID string          `json:"period_id"`
	Regular  RegularMetrics  `json:"regular"`
	Outreach OutreachMetrics `json:"outreach"`
}

func NewMetricsResponse(m UserMetrics) MetricsResponse {
	return MetricsResponse{
		UserID:   m.UserID,
		PeriodID: m.PeriodID,
		Regular: RegularMetrics{
			Percentage:     roundPercentage(m.RegularPercentage),
			AttendedHours:  RoundHours(m.RegularAttended.Hours()),
			TotalHours:     RoundHours(m.RegularTotal.Hours()),
			ExcusedHours:   RoundHours(m.RegularExcused.Hours()),
			EffectiveHours: RoundHours(m.Denominator().Hours()),
			WindowCount:    m.RegularWindowCount,
			AttendedCount:  m.RegularAttendedCount,
			ExcusedCount:   m.RegularExcusedCount,
		},
		Outreach: OutreachMetrics{
			AttendedHours: RoundHours(m.OutreachAttended.Hours()),
			TotalHours:    RoundHours(m.OutreachTotal.Hours()),
			WindowCount:   m.OutreachWindowCount,
		},
	}
}

// RoundHours rounds to two decimals for display.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func roundPercentage(p Percentage) Percentage {
	if v, ok := p.Get(); ok {
		p.Value = RoundHours(v)
	}
	return p
}
