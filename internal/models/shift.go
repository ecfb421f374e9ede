package models

import (
	"fmt"
	"time"
)

// shiftClockLayout is the wall-clock format shifts are stored in.
const shiftClockLayout = "15:04"

// Shift is a reusable daily time window template. Times are wall-clock
// strings without a date; a booking derives its absolute interval from a
// shift plus a calendar date.
type Shift struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Overnight bool      `db:"overnight" json:"overnight"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Zone      string    `db:"zone" json:"zone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ParseClock parses a wall-clock value such as "07:00".
func ParseClock(raw string) (time.Duration, error) {
	t, err := time.Parse(shiftClockLayout, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", raw, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Window resolves the shift to an absolute [start, end) interval on the
// given calendar date. Overnight shifts end on the following day.
func (s Shift) Window(date time.Time) (time.Time, time.Time, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	startOffset, err := ParseClock(s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endOffset, err := ParseClock(s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := startOfDay.Add(startOffset)
	end := startOfDay.Add(endOffset)
	if s.Overnight {
		end = end.Add(24 * time.Hour)
	}
	return start, end, nil
}
