package period

import (
	"context"
	"time"
)

type PeriodRepository interface {
	Create(ctx context.Context, p ReportingPeriod) (ReportingPeriod, error)

	// GetByID returns ErrPeriodNotFound when the period does not exist.
	GetByID(ctx context.Context, id string) (ReportingPeriod, error)

	// GetContaining returns the most recently started period covering date,
	// or ErrNoActivePeriod.
	GetContaining(ctx context.Context, date time.Time) (ReportingPeriod, error)
	List(ctx context.Context) ([]ReportingPeriod, error)
}
