package period

import (
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

type CreatePeriodRequest struct {
	Name      string     `json:"name"`
	StartDate string     `json:"start_date"` // YYYY-MM-DD
	EndDate   string     `json:"end_date"`   // YYYY-MM-DD
	Actor     user.Actor `json:"-"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

func NewPeriodResponse(p ReportingPeriod) PeriodResponse {
	return PeriodResponse{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate.Format(validator.DateLayout),
		EndDate:   p.EndDate.Format(validator.DateLayout),
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
