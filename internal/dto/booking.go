package dto

import "time"

// ReserveRequest asks for a seat over an explicit interval or a shift plus
// calendar date. Exactly one of the two forms must be supplied.
type ReserveRequest struct {
	StudentID string     `json:"studentId" validate:"required"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	ShiftID   string     `json:"shiftId"`
	Date      string     `json:"date"`
}
