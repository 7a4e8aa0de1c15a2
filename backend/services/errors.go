package services

import (
	"errors"
	"time"
)

// Sentinel errors for the core operations. Controllers map these onto HTTP
// status codes; anything else is a persistence failure.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// DateLayout is the calendar-date format used across plans and check-ins.
const DateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// prevDay returns the calendar day before d. d must already be validated.
func prevDay(d string) string {
	t, _ := parseDate(d)
	return t.AddDate(0, 0, -1).Format(DateLayout)
}
