package excuse

import (
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

type CreateExcuseRequest struct {
	UserID   string     `json:"user_id"`
	WindowID string     `json:"window_id"`
	PeriodID *string    `json:"period_id,omitempty"` // defaults to the period containing the window
	Reason   string     `json:"reason"`
	Actor    user.Actor `json:"-"`
}

func (r *CreateExcuseRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if validator.IsEmpty(r.WindowID) {
		errs = append(errs, validator.ValidationError{
			Field:   "window_id",
			Message: "window_id is required",
		})
	}
	errs = append(errs, validateReason(r.Reason)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestExcuseRequest struct {
	UserID   string `json:"-"`
	WindowID string `json:"window_id,omitempty"`
	Date     string `json:"date,omitempty"` // YYYY-MM-DD, resolved to that day's regular window
	Reason   string `json:"reason"`
}

func (r *RequestExcuseRequest) Validate() error {
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
	errs = append(errs, validateReason(r.Reason)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReviewRequest struct {
	RequestID  string     `json:"-"`
	AdminNotes string     `json:"admin_notes"`
	Actor      user.Actor `json:"-"`
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "request id is required",
		})
	}
	if len(r.AdminNotes) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "admin_notes",
			Message: "admin_notes must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ExcuseFilter struct {
	UserID   string     `json:"user_id"`
	PeriodID string     `json:"period_id"`
	Actor    user.Actor `json:"-"`
}

func (f *ExcuseFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if validator.IsEmpty(f.PeriodID) {
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

type PendingRequestFilter struct {
	Actor user.Actor `json:"-"`
}

func validateReason(reason string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if len(reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}
	return errs
}

type ExcuseResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	WindowID  string  `json:"window_id"`
	PeriodID  string  `json:"period_id"`
	Reason    string  `json:"reason"`
	CreatedBy string  `json:"created_by"`
	RequestID *string `json:"request_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func NewExcuseResponse(e Excuse) ExcuseResponse {
	return ExcuseResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		WindowID:  e.WindowID,
		PeriodID:  e.PeriodID,
		Reason:    e.Reason,
		CreatedBy: e.CreatedBy,
		RequestID: e.RequestID,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

type RequestResponse struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	WindowID    string        `json:"window_id"`
	Reason      string        `json:"reason"`
	Status      RequestStatus `json:"status"`
	RequestedAt string        `json:"requested_at"`
	ReviewedBy  *string       `json:"reviewed_by,omitempty"`
	ReviewedAt  *string       `json:"reviewed_at,omitempty"`
	AdminNotes  *string       `json:"admin_notes,omitempty"`
}

func NewRequestResponse(r Request) RequestResponse {
	resp := RequestResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		WindowID:    r.WindowID,
		Reason:      r.Reason,
		Status:      r.Status,
		RequestedAt: r.RequestedAt.Format(time.RFC3339),
		ReviewedBy:  r.ReviewedBy,
		AdminNotes:  r.AdminNotes,
	}
	if r.ReviewedAt != nil {
		s := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}
