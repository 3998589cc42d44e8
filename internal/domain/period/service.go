package period

import "context"

type PeriodService interface {
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriod(ctx context.Context, id string) (PeriodResponse, error)
	ListPeriods(ctx context.Context) ([]PeriodResponse, error)

	// CurrentPeriod resolves the period containing today's date.
	CurrentPeriod(ctx context.Context) (PeriodResponse, error)
}
