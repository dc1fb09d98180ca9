package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format accepted for query ranges.
const DateLayout = "2006-01-02"

// DateRange is a half-open UTC interval [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDayRange covers whole UTC days from fromDate through toDate inclusive.
func NewDayRange(fromDate, toDate time.Time) (DateRange, error) {
	from := startOfDay(fromDate)
	to := startOfDay(toDate)
	if from.After(to) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{From: from, To: to.AddDate(0, 0, 1)}, nil
}

// ParseDayRange parses two YYYY-MM-DD dates into a DateRange.
func ParseDayRange(from, to string) (DateRange, error) {
	f, err := ParseDate(from)
	if err != nil {
		return DateRange{}, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return DateRange{}, err
	}
	return NewDayRange(f, t)
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidArgument)
	}
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidArgument, s)
	}
	return d, nil
}

// LastInstant is the inclusive end of the range, one millisecond before To.
func (r DateRange) LastInstant() time.Time {
	return r.To.Add(-time.Millisecond)
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateClientID trims and checks a client identifier.
func ValidateClientID(clientID string) (string, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return "", fmt.Errorf("%w: client id is required", ErrInvalidArgument)
	}
	if len(clientID) > MaxClientIDLength {
		return "", fmt.Errorf("%w: client id exceeds %d characters", ErrInvalidArgument, MaxClientIDLength)
	}
	return clientID, nil
}

// MaxClientIDLength matches the accounts.client_id column.
const MaxClientIDLength = 64
