package period

import "errors"

var (
	ErrPeriodNotFound     = errors.New("reporting period not found")
	ErrNoActivePeriod     = errors.New("no reporting period covers this date")
	ErrInvalidPeriodRange = errors.New("period end date must not be before start date")
)
