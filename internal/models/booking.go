package models

import "time"

// BookingStatus tracks the lifecycle of a booking.
type BookingStatus string

const (
	BookingActive    BookingStatus = "ACTIVE"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking records a reservation linking a student and a seat over an
// absolute time interval. Intervals are half-open: [start, end). An active
// booking's interval is never mutated in place; a change is cancel plus
// recreate so the audit history stays intact.
type Booking struct {
	ID        string        `db:"id" json:"id"`
	SeatID    string        `db:"seat_id" json:"seat_id"`
	StudentID string        `db:"student_id" json:"student_id"`
	ShiftID   *string       `db:"shift_id" json:"shift_id,omitempty"`
	StartTime time.Time     `db:"start_time" json:"start_time"`
	EndTime   time.Time     `db:"end_time" json:"end_time"`
	Status    BookingStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the booking's interval shares at least one
// instant with [start, end) under half-open comparison.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

// Contains reports whether the instant falls inside [start, end).
func (b Booking) Contains(at time.Time) bool {
	return !at.Before(b.StartTime) && at.Before(b.EndTime)
}

// BookingFilter captures filtering criteria for listing bookings.
type BookingFilter struct {
	SeatID    string
	StudentID string
	Status    *BookingStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
