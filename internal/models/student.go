package models

import "time"

// StudentStatus describes a student's registration state.
type StudentStatus string

const (
	StudentActive    StudentStatus = "ACTIVE"
	StudentSuspended StudentStatus = "SUSPENDED"
	StudentGraduated StudentStatus = "GRADUATED"
)

// Student represents a registered library member. Students own bookings by
// reference only.
type Student struct {
	ID        string        `db:"id" json:"id"`
	FullName  string        `db:"full_name" json:"full_name"`
	Email     string        `db:"email" json:"email"`
	Phone     string        `db:"phone" json:"phone"`
	Status    StudentStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search    string
	Status    *StudentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
