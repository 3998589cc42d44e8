package excuse

import "time"

// Excuse removes one window's duration from one user's denominator for one period.
type Excuse struct {
	ID        string
	UserID    string
	WindowID  string
	PeriodID  string
	Reason    string
	CreatedBy string
	RequestID *string
	CreatedAt time.Time
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusDenied   RequestStatus = "denied"
)

// Request is a user's ask to be excused from a window, reviewed by an admin.
type Request struct {
	ID          string
	UserID      string
	WindowID    string
	Reason      string
	Status      RequestStatus
	RequestedAt time.Time
	ReviewedBy  *string
	ReviewedAt  *time.Time
	AdminNotes  *string
}

func (r Request) IsPending() bool {
	return r.Status == RequestStatusPending
}
