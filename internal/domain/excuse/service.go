package excuse

import "context"

type ExcuseService interface {
	// CreateExcuse excuses a user from a regular window (admin).
	CreateExcuse(ctx context.Context, req CreateExcuseRequest) (ExcuseResponse, error)
	ListExcuses(ctx context.Context, filter ExcuseFilter) ([]ExcuseResponse, error)

	// RequestExcuse files a pending request on behalf of the caller.
	RequestExcuse(ctx context.Context, req RequestExcuseRequest) (RequestResponse, error)
	ListPendingRequests(ctx context.Context, filter PendingRequestFilter) ([]RequestResponse, error)

	// ApproveRequest approves a pending request and creates the excuse.
	ApproveRequest(ctx context.Context, req ReviewRequest) (RequestResponse, error)
	DenyRequest(ctx context.Context, req ReviewRequest) (RequestResponse, error)
}
