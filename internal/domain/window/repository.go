package window

import (
	"context"
	"time"
)

// WindowRepository defines data access methods for time windows.
type WindowRepository interface {
	// Create persists a new window. The ID is minted by the caller.
	Create(ctx context.Context, w TimeWindow) (TimeWindow, error)

	// GetByID returns ErrWindowNotFound when no window has the given id.
	GetByID(ctx context.Context, id string) (TimeWindow, error)

	// ListStartingBetween returns windows whose start time lies in [from, to),
	// ordered by start time then id. A nil category matches every category.
	ListStartingBetween(ctx context.Context, from, to time.Time, category *Category) ([]TimeWindow, error)
}
