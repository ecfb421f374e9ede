package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionBookingReserve   = "BOOKING_RESERVE"
	AuditActionBookingCancel    = "BOOKING_CANCEL"
	AuditActionBookingRelease   = "BOOKING_RELEASE"
	AuditActionSeatMaintenance  = "SEAT_MAINTENANCE"
	AuditActionSeatCreate       = "SEAT_CREATE"
	AuditActionSeatUpdate       = "SEAT_UPDATE"
	AuditActionShiftCreate      = "SHIFT_CREATE"
	AuditActionShiftUpdate      = "SHIFT_UPDATE"
	AuditActionShiftDelete      = "SHIFT_DELETE"
	AuditActionStudentRegister  = "STUDENT_REGISTER"
	AuditActionStudentUpdate    = "STUDENT_UPDATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
