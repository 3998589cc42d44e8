package metrics

import "errors"

var (
	ErrPeriodRequired = errors.New("period_id is required")
)
