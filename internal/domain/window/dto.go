package window

import (
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

// ========================================
// WINDOW DTOs
// ========================================

type CreateWindowRequest struct {
	Date        string     `json:"date"`       // YYYY-MM-DD
	StartTime   string     `json:"start_time"` // HH:MM
	EndTime     string     `json:"end_time"`   // HH:MM
	Category    Category   `json:"category"`
	Description string     `json:"description"`
	Actor       user.Actor `json:"-"`
}

func (r *CreateWindowRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if !validator.IsValidClock(r.StartTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time must be in HH:MM format",
		})
	}

	if !validator.IsValidClock(r.EndTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be in HH:MM format",
		})
	} else if validator.IsValidClock(r.StartTime) && r.EndTime <= r.StartTime {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be after start_time",
		})
	}

	if r.Category == "" {
		r.Category = CategoryRegular
	}
	if !r.Category.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: "category must be either regular or outreach",
		})
	}

	if len(r.Description) > 200 {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not exceed 200 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type WindowFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD, inclusive
	Category  *string `json:"category,omitempty"`
}

func (f *WindowFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.StartDate != nil && f.EndDate != nil && *f.EndDate < *f.StartDate {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}
	if f.Category != nil && !Category(*f.Category).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: "category must be either regular or outreach",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpcomingFilter struct {
	Days     int     `json:"days"`
	Category *string `json:"category,omitempty"`
}

func (f *UpcomingFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Days < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "days must be a positive number",
		})
	}
	if f.Days == 0 {
		f.Days = 7
	}
	if f.Days > 90 {
		f.Days = 90
	}
	if f.Category != nil && !Category(*f.Category).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: "category must be either regular or outreach",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WindowResponse struct {
	ID            string   `json:"id"`
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	StartsAt      string   `json:"starts_at"`
	EndsAt        string   `json:"ends_at"`
	Category      Category `json:"category"`
	Description   string   `json:"description"`
	DurationHours float64  `json:"duration_hours"`
	CreatedBy     string   `json:"created_by"`
}

// NewWindowResponse renders w with dates and clock times in loc.
func NewWindowResponse(w TimeWindow, loc *time.Location) WindowResponse {
	start := w.StartTime.In(loc)
	end := w.EndTime.In(loc)
	return WindowResponse{
		ID:            w.ID,
		Date:          start.Format(validator.DateLayout),
		StartTime:     start.Format(validator.ClockLayout),
		EndTime:       end.Format(validator.ClockLayout),
		StartsAt:      start.Format(time.RFC3339),
		EndsAt:        end.Format(time.RFC3339),
		Category:      w.Category,
		Description:   w.Description,
		DurationHours: w.Hours(),
		CreatedBy:     w.CreatedBy,
	}
}
