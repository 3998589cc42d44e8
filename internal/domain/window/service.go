package window

import "context"

// WindowService covers the admin side of window management.
type WindowService interface {
	CreateWindow(ctx context.Context, req CreateWindowRequest) (WindowResponse, error)
	GetWindow(ctx context.Context, id string) (WindowResponse, error)
	ListWindows(ctx context.Context, filter WindowFilter) ([]WindowResponse, error)

	// ListUpcoming lists windows starting within the next Days days.
	ListUpcoming(ctx context.Context, filter UpcomingFilter) ([]WindowResponse, error)
}
