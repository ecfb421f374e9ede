package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/readhall/seatdesk-api/internal/models"
)

// BookingRepository is the booking ledger: the source of truth for seat
// occupancy. The overlap invariant (no two active bookings on one seat may
// share an instant) is enforced inside Reserve's transaction.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ReserveParams carries the values required to insert a booking.
type ReserveParams struct {
	SeatID    string
	StudentID string
	ShiftID   *string
	StartTime time.Time
	EndTime   time.Time
}

// Reserve atomically checks availability and inserts an active booking.
// The seat row is locked for the duration of the transaction, so two
// concurrent reservations for the same seat serialize: the second sees the
// first's row and receives it back as the conflict.
func (r *BookingRepository) Reserve(ctx context.Context, params ReserveParams) (booking *models.Booking, conflict *models.Booking, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin reserve transaction: %w", err)
	}
	defer func() {
		if err != nil || conflict != nil {
			_ = tx.Rollback()
		}
	}()

	var seat struct {
		ID          string `db:"id"`
		Maintenance bool   `db:"maintenance"`
	}
	const lockQuery = `SELECT id, maintenance FROM seats WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &seat, lockQuery, params.SeatID); err != nil {
		return nil, nil, err
	}
	if seat.Maintenance {
		err = ErrSeatUnderMaintenance
		return nil, nil, err
	}

	// Half-open overlap: existing.start < requested.end AND requested.start < existing.end.
	const overlapQuery = `SELECT id, seat_id, student_id, shift_id, start_time, end_time, status, created_at, updated_at
FROM bookings
WHERE seat_id = $1 AND status = $2 AND start_time < $3 AND $4 < end_time
ORDER BY start_time ASC
LIMIT 1`
	var existing models.Booking
	overlapErr := tx.GetContext(ctx, &existing, overlapQuery, params.SeatID, models.BookingActive, params.EndTime, params.StartTime)
	if overlapErr == nil {
		conflict = &existing
		return nil, conflict, nil
	}
	if overlapErr != sql.ErrNoRows {
		err = fmt.Errorf("check booking overlap: %w", overlapErr)
		return nil, nil, err
	}

	now := time.Now().UTC()
	inserted := models.Booking{
		ID:        uuid.NewString(),
		SeatID:    params.SeatID,
		StudentID: params.StudentID,
		ShiftID:   params.ShiftID,
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
		Status:    models.BookingActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	const insertQuery = `INSERT INTO bookings (id, seat_id, student_id, shift_id, start_time, end_time, status, created_at, updated_at)
VALUES (:id, :seat_id, :student_id, :shift_id, :start_time, :end_time, :status, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, inserted); err != nil {
		err = fmt.Errorf("insert booking: %w", err)
		return nil, nil, err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("commit reserve: %w", err)
		return nil, nil, err
	}
	return &inserted, nil, nil
}

// FindByID fetches a booking by ID.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	const query = `SELECT id, seat_id, student_id, shift_id, start_time, end_time, status, created_at, updated_at
FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus transitions a booking from one status to another. The guard
// on the current status makes the transition idempotence-safe; it returns
// the number of rows changed so callers can detect a lost race.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (int64, error) {
	const query = `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return 0, fmt.Errorf("update booking status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("booking status rows: %w", err)
	}
	return rows, nil
}

// ListActiveForSeat returns active bookings overlapping the half-open
// window [from, until) for one seat, ordered by start time. The status
// projector derives occupied/reserved from the result.
func (r *BookingRepository) ListActiveForSeat(ctx context.Context, seatID string, from, until time.Time) ([]models.Booking, error) {
	const query = `SELECT id, seat_id, student_id, shift_id, start_time, end_time, status, created_at, updated_at
FROM bookings
WHERE seat_id = $1 AND status = $2 AND start_time < $3 AND $4 < end_time
ORDER BY start_time ASC`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, seatID, models.BookingActive, until, from); err != nil {
		return nil, fmt.Errorf("list active bookings for seat: %w", err)
	}
	return bookings, nil
}

// ListActiveForSeats bulk-loads active bookings overlapping [from, until)
// for a page of seats, keyed by seat.
func (r *BookingRepository) ListActiveForSeats(ctx context.Context, seatIDs []string, from, until time.Time) (map[string][]models.Booking, error) {
	if len(seatIDs) == 0 {
		return map[string][]models.Booking{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, seat_id, student_id, shift_id, start_time, end_time, status, created_at, updated_at
FROM bookings
WHERE seat_id IN (?) AND status = ? AND start_time < ? AND ? < end_time
ORDER BY seat_id, start_time ASC`, seatIDs, models.BookingActive, until, from)
	if err != nil {
		return nil, fmt.Errorf("build bulk booking query: %w", err)
	}
	query = r.db.Rebind(query)

	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list active bookings for seats: %w", err)
	}

	bySeat := make(map[string][]models.Booking, len(seatIDs))
	for _, b := range bookings {
		bySeat[b.SeatID] = append(bySeat[b.SeatID], b)
	}
	return bySeat, nil
}

// List returns bookings matching the provided filters.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	base := "FROM bookings WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SeatID != "" {
		conditions = append(conditions, fmt.Sprintf("seat_id = $%d", len(args)+1))
		args = append(args, filter.SeatID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, seat_id, student_id, shift_id, start_time, end_time, status, created_at, updated_at
%s ORDER BY start_time %s LIMIT %d OFFSET %d`, base, order, size, offset)

	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

// CountFutureActiveByShift counts active bookings derived from a shift
// whose interval has not yet ended. Used to guard shift deletion.
func (r *BookingRepository) CountFutureActiveByShift(ctx context.Context, shiftID string, after time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings WHERE shift_id = $1 AND status = $2 AND end_time > $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, shiftID, models.BookingActive, after); err != nil {
		return 0, fmt.Errorf("count future bookings for shift: %w", err)
	}
	return count, nil
}
