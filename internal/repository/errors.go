package repository

import "errors"

// Sentinel errors surfaced by transactional repository operations so the
// service layer can map them onto the API error taxonomy.
var (
	// ErrSeatOccupied is returned when a maintenance toggle hits a seat
	// with a booking active at that instant.
	ErrSeatOccupied = errors.New("seat has an active booking")

	// ErrSeatUnderMaintenance is returned when a reservation targets a
	// seat whose maintenance flag is set, re-checked under the row lock.
	ErrSeatUnderMaintenance = errors.New("seat is under maintenance")

	// ErrDuplicateSeatLabel is returned when an insert or update violates
	// the per-floor label uniqueness constraint.
	ErrDuplicateSeatLabel = errors.New("seat label already exists on this floor")
)
