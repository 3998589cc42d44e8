package excuse

import "errors"

var (
	ErrExcuseNotFound          = errors.New("excuse not found")
	ErrExcuseExists            = errors.New("user is already excused from this window")
	ErrOutreachNotExcusable    = errors.New("outreach events cannot be excused, all outreach hours count toward the total")
	ErrWindowOutsidePeriod     = errors.New("window does not fall inside the reporting period")
	ErrRequestNotFound         = errors.New("excuse request not found")
	ErrRequestAlreadyProcessed = errors.New("excuse request has already been approved or denied")
	ErrRequestExists           = errors.New("an excuse request for this window is already pending")
)
