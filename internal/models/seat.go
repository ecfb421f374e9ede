package models

import "time"

// SeatStatus is the projected display status of a seat. It is derived on
// demand from the booking ledger and the maintenance flag, never stored.
type SeatStatus string

const (
	SeatAvailable   SeatStatus = "AVAILABLE"
	SeatOccupied    SeatStatus = "OCCUPIED"
	SeatReserved    SeatStatus = "RESERVED"
	SeatMaintenance SeatStatus = "MAINTENANCE"
)

// Seat represents a physical seat in the reading hall.
type Seat struct {
	ID          string    `db:"id" json:"id"`
	Label       string    `db:"label" json:"label"`
	Floor       int       `db:"floor" json:"floor"`
	Zone        string    `db:"zone" json:"zone"`
	Maintenance bool      `db:"maintenance" json:"maintenance"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SeatWithStatus pairs a seat with its projected status for API responses.
type SeatWithStatus struct {
	Seat
	Status SeatStatus `db:"-" json:"status"`
}

// SeatFilter captures filtering criteria for listing seats.
type SeatFilter struct {
	Floor     *int
	Zone      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// FloorOccupancy aggregates projected seat statuses for one floor.
type FloorOccupancy struct {
	Floor       int `json:"floor"`
	Available   int `json:"available"`
	Occupied    int `json:"occupied"`
	Reserved    int `json:"reserved"`
	Maintenance int `json:"maintenance"`
}
