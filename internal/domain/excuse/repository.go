package excuse

import "context"

type ExcuseRepository interface {
	Create(ctx context.Context, e Excuse) (Excuse, error)

	// Exists reports whether the user already has an excuse for the window.
	Exists(ctx context.Context, userID string, windowID string) (bool, error)

	// ListByUserAndPeriod returns the user's excuses attributed to the period.
	ListByUserAndPeriod(ctx context.Context, userID string, periodID string) ([]Excuse, error)

	// ListByPeriod returns every user's excuses attributed to the period.
	ListByPeriod(ctx context.Context, periodID string) ([]Excuse, error)
}

type RequestRepository interface {
	Create(ctx context.Context, r Request) (Request, error)

	// GetByID returns ErrRequestNotFound when the request does not exist.
	GetByID(ctx context.Context, id string) (Request, error)
	HasPending(ctx context.Context, userID string, windowID string) (bool, error)
	ListByStatus(ctx context.Context, status RequestStatus) ([]Request, error)
	Update(ctx context.Context, r Request) error
}
