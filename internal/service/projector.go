package service

import (
	"time"

	"github.com/readhall/seatdesk-api/internal/models"
)

// DefaultReservedLookahead is how far ahead of a booking's start a seat is
// surfaced as reserved when no explicit window is configured.
const DefaultReservedLookahead = 30 * time.Minute

// ProjectStatus derives a seat's display status from the maintenance flag
// and its active bookings. Pure and side-effect free: recomputed on every
// call, never cached, so it cannot drift from the booking ledger. Rule
// order, first match wins: maintenance, occupied, reserved, available.
func ProjectStatus(seat models.Seat, bookings []models.Booking, asOf time.Time, lookahead time.Duration) models.SeatStatus {
	if seat.Maintenance {
		return models.SeatMaintenance
	}
	if lookahead <= 0 {
		lookahead = DefaultReservedLookahead
	}
	horizon := asOf.Add(lookahead)

	for _, b := range bookings {
		if b.Status != models.BookingActive {
			continue
		}
		if b.Contains(asOf) {
			return models.SeatOccupied
		}
	}

	for _, b := range bookings {
		if b.Status != models.BookingActive {
			continue
		}
		if !b.StartTime.Before(asOf) && b.StartTime.Before(horizon) {
			return models.SeatReserved
		}
	}

	return models.SeatAvailable
}
