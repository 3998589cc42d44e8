package attendance

import (
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

// ========================================
// SUBMISSION DTOs
// ========================================

// LegacyPayload is the full/partial form used by submissions without times.
type LegacyPayload struct {
	Full         bool     `json:"full"`
	PartialHours *float64 `json:"partial_hours,omitempty"`
}

type SubmitAttendanceRequest struct {
	UserID    string         `json:"-"`
	WindowID  string         `json:"window_id,omitempty"`
	Date      string         `json:"date,omitempty"`       // YYYY-MM-DD
	Category  string         `json:"category,omitempty"`   // regular | outreach
	StartTime string         `json:"start_time,omitempty"` // HH:MM
	EndTime   string         `json:"end_time,omitempty"`   // HH:MM
	Legacy    *LegacyPayload `json:"legacy,omitempty"`
	Notes     string         `json:"notes"`
}

func (r *SubmitAttendanceRequest) hasTimes() bool {
	return r.StartTime != "" || r.EndTime != ""
}

func (r *SubmitAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if validator.IsEmpty(r.WindowID) && validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "window_id",
			Message: "either window_id or date is required",
		})
	}

	if r.Date != "" {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.Category != "" && !window.Category(r.Category).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: "category must be either regular or outreach",
		})
	}

	if r.hasTimes() {
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
		}
		if r.Date == "" {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date is required when start_time and end_time are given",
			})
		}
		if r.Legacy != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "legacy",
				Message: "legacy credit cannot be combined with a time range",
			})
		}
	}

	if r.Legacy != nil && r.Legacy.PartialHours != nil {
		if r.Legacy.Full {
			errs = append(errs, validator.ValidationError{
				Field:   "legacy",
				Message: "choose either full or partial_hours",
			})
		} else if *r.Legacy.PartialHours <= 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "legacy.partial_hours",
				Message: "partial_hours must be greater than 0",
			})
		}
	}

	if len(r.Notes) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToSubmission converts a validated request into a Submission, anchoring dates
// and HH:MM times in loc.
func (r *SubmitAttendanceRequest) ToSubmission(loc *time.Location) (Submission, error) {
	sub := Submission{
		UserID: r.UserID,
		Notes:  r.Notes,
		Credit: LegacyFull{},
	}

	category := window.Category(r.Category)

	var date time.Time
	if r.Date != "" {
		d, err := validator.ParseDateIn(r.Date, loc)
		if err != nil {
			return Submission{}, err
		}
		date = d
	}

	var rng *TimeRange
	if r.hasTimes() {
		start, err := validator.ParseClockOn(date, r.StartTime, loc)
		if err != nil {
			return Submission{}, err
		}
		end, err := validator.ParseClockOn(date, r.EndTime, loc)
		if err != nil {
			return Submission{}, err
		}
		rng = &TimeRange{Start: start, End: end}
		sub.Credit = TimedRange{Range: *rng}
	} else if r.Legacy != nil && r.Legacy.PartialHours != nil {
		sub.Credit = LegacyPartial{Hours: *r.Legacy.PartialHours}
	}

	switch {
	case r.WindowID != "":
		sub.Target = ByID{WindowID: r.WindowID, Category: category}
	case rng != nil:
		if category == "" {
			category = window.CategoryRegular
		}
		sub.Target = ByRange{Date: date, Category: category, Range: *rng}
	default:
		if category == "" {
			category = window.CategoryRegular
		}
		sub.Target = ByDate{Date: date, Category: category}
	}

	return sub, nil
}

type RecordResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	WindowID        string                 `json:"window_id"`
	Window          *window.WindowResponse `json:"window,omitempty"`
	CreditKind      CreditKind             `json:"credit_kind"`
	AttendanceStart *string                `json:"attendance_start,omitempty"`
	AttendanceEnd   *string                `json:"attendance_end,omitempty"`
	PartialHours    *float64               `json:"partial_hours,omitempty"`
	CreditedHours   float64                `json:"credited_hours"`
	Notes           string                 `json:"notes"`
	LoggedAgo       string                 `json:"logged_ago,omitempty"`
	CreatedAt       string                 `json:"created_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

type SubmitResponse struct {
	Record  RecordResponse `json:"record"`
	Created bool           `json:"created"` // false when an existing record was edited
}

type MyRecordsFilter struct {
	UserID   string  `json:"-"`
	PeriodID *string `json:"period_id,omitempty"` // defaults to the current period
}
