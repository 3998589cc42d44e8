package attendance

import (
	"context"
)

// RecordRepository defines data access methods for attendance records.
type RecordRepository interface {
	// GetByUserAndWindow returns ErrRecordNotFound when the user has no record for the window.
	GetByUserAndWindow(ctx context.Context, userID string, windowID string) (Record, error)

	// Upsert inserts the record or, when (user, window) already has one, replaces
	// its time fields and notes. created reports which of the two happened.
	Upsert(ctx context.Context, record Record) (saved Record, created bool, err error)

	// ListByUserAndWindows returns the user's records for any of the given windows.
	ListByUserAndWindows(ctx context.Context, userID string, windowIDs []string) ([]Record, error)

	// ListByWindows returns every user's records for the given windows.
	ListByWindows(ctx context.Context, windowIDs []string) ([]Record, error)
}
