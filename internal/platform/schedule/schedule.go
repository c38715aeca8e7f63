// Package schedule computes daily digest trigger times in a configured
// timezone.
package schedule

import (
	"errors"
	"fmt"
	"time"
	// Embed tzdata for environments without zoneinfo.
	_ "time/tzdata"
)

// Time bounds.
const (
	maxHour   = 23
	maxMinute = 59
)

// Error messages.
const errFmtInvalidTimezone = "invalid timezone: %w"

// Static errors for schedule validation.
var (
	ErrInvalidHour   = errors.New("invalid hour")
	ErrInvalidMinute = errors.New("invalid minute")
)

// Daily triggers once per day at a fixed wall-clock time.
type Daily struct {
	Hour   int
	Minute int
	Loc    *time.Location
}

// New creates a Daily schedule. An empty timezone means UTC.
func New(hour, minute int, timezone string) (Daily, error) {
	if hour < 0 || hour > maxHour {
		return Daily{}, fmt.Errorf("%w: %d", ErrInvalidHour, hour)
	}

	if minute < 0 || minute > maxMinute {
		return Daily{}, fmt.Errorf("%w: %d", ErrInvalidMinute, minute)
	}

	loc := time.UTC

	if timezone != "" {
		var err error

		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return Daily{}, fmt.Errorf(errFmtInvalidTimezone, err)
		}
	}

	return Daily{Hour: hour, Minute: minute, Loc: loc}, nil
}

// Next returns the first trigger time strictly after the given instant.
func (d Daily) Next(after time.Time) time.Time {
	local := after.In(d.Loc)

	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, d.Loc)
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
