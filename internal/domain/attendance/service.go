package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance submissions
type AttendanceService interface {
	// Submit logs attendance for a window, or edits the existing record for it.
	Submit(ctx context.Context, req SubmitAttendanceRequest) (SubmitResponse, error)

	// GetRecordForWindow returns the caller's record for a window, used to
	// render log-vs-edit affordances.
	GetRecordForWindow(ctx context.Context, userID string, windowID string) (RecordResponse, error)

	// HasRecord reports whether the user already has a record for the window.
	HasRecord(ctx context.Context, userID string, windowID string) (bool, error)

	// ListMyRecords lists the user's records for windows in a reporting period.
	ListMyRecords(ctx context.Context, filter MyRecordsFilter) ([]RecordResponse, error)
}
