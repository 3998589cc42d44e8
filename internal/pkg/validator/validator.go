package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail checks basic email format.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidUUID accepts the canonical 36-character form of any UUID version,
// which is what the UUID columns compare against.
func IsValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse(DateLayout, dateStr)
	return date, err == nil
}

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidClock checks a 24-hour HH:MM string.
func IsValidClock(clock string) bool {
	return clockRegex.MatchString(clock)
}

// ParseDateIn parses a YYYY-MM-DD string as midnight in loc.
func ParseDateIn(dateStr string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, dateStr, loc)
}

// ParseClockOn anchors a HH:MM string to the calendar day of date in loc.
func ParseClockOn(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	c, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
}
