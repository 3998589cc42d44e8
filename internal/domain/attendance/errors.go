package attendance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meetinghours/attendance-backend/internal/domain/window"
)

// Attendance domain errors
var (
	// Matching errors
	ErrNoMatchingWindow = errors.New("no window matches this submission")
	ErrAmbiguousWindow  = errors.New("more than one window matches this submission, please specify a time range")

	// Credit errors
	ErrInvalidRange        = errors.New("attendance end time must be after start time")
	ErrNoOverlap           = errors.New("attendance time range does not overlap the window")
	ErrInvalidPartialHours = errors.New("partial hours must be greater than zero")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
)

// AmbiguousMatchError lists the windows a submission could not choose between.
type AmbiguousMatchError struct {
	Candidates []window.TimeWindow
}

func (e *AmbiguousMatchError) Error() string {
	ids := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		ids = append(ids, c.ID)
	}
	return fmt.Sprintf("%s (candidates: %s)", ErrAmbiguousWindow.Error(), strings.Join(ids, ", "))
}

func (e *AmbiguousMatchError) Is(target error) bool {
	return target == ErrAmbiguousWindow
}
