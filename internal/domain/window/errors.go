package window

import "errors"

var (
	ErrWindowNotFound     = errors.New("time window not found")
	ErrInvalidCategory    = errors.New("category must be either regular or outreach")
	ErrInvalidWindowRange = errors.New("window end time must be after start time")
)
