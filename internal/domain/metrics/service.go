package metrics

import "context"

// MetricsService computes per-user, per-period compliance figures.
type MetricsService interface {
	// Metrics returns the raw figures for one user in one period.
	Metrics(ctx context.Context, userID string, periodID string) (UserMetrics, error)

	// GetMetrics is the request/response form used by the HTTP layer.
	GetMetrics(ctx context.Context, req MetricsRequest) (MetricsResponse, error)
}
