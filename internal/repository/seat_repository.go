package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/readhall/seatdesk-api/internal/models"
)

const pqUniqueViolation = "23505"

// SeatRepository manages persistence for the seat registry.
type SeatRepository struct {
	db *sqlx.DB
}

// NewSeatRepository constructs a SeatRepository.
func NewSeatRepository(db *sqlx.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// List returns seats matching the provided filters.
func (r *SeatRepository) List(ctx context.Context, filter models.SeatFilter) ([]models.Seat, int, error) {
	base := "FROM seats WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Floor != nil {
		conditions = append(conditions, fmt.Sprintf("floor = $%d", len(args)+1))
		args = append(args, *filter.Floor)
	}
	if filter.Zone != "" {
		conditions = append(conditions, fmt.Sprintf("zone = $%d", len(args)+1))
		args = append(args, filter.Zone)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"label":      true,
		"floor":      true,
		"zone":       true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "floor"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, label, floor, zone, maintenance, created_at, updated_at
%s ORDER BY %s %s, label ASC LIMIT %d OFFSET %d`, base, sortBy, order, size, offset)

	var seats []models.Seat
	if err := r.db.SelectContext(ctx, &seats, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list seats: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count seats: %w", err)
	}
	return seats, total, nil
}

// ListAll returns every seat, ordered by floor and label. Used by the
// occupancy summary, which aggregates over the whole registry.
func (r *SeatRepository) ListAll(ctx context.Context) ([]models.Seat, error) {
	const query = `SELECT id, label, floor, zone, maintenance, created_at, updated_at FROM seats ORDER BY floor ASC, label ASC`
	var seats []models.Seat
	if err := r.db.SelectContext(ctx, &seats, query); err != nil {
		return nil, fmt.Errorf("list all seats: %w", err)
	}
	return seats, nil
}

// FindByID fetches a seat by ID.
func (r *SeatRepository) FindByID(ctx context.Context, id string) (*models.Seat, error) {
	const query = `SELECT id, label, floor, zone, maintenance, created_at, updated_at FROM seats WHERE id = $1`
	var seat models.Seat
	if err := r.db.GetContext(ctx, &seat, query, id); err != nil {
		return nil, err
	}
	return &seat, nil
}

// Create provisions a new seat.
func (r *SeatRepository) Create(ctx context.Context, seat *models.Seat) error {
	if seat.ID == "" {
		seat.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	seat.CreatedAt = now
	seat.UpdatedAt = now

	const query = `INSERT INTO seats (id, label, floor, zone, maintenance, created_at, updated_at)
VALUES (:id, :label, :floor, :zone, :maintenance, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, seat); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSeatLabel
		}
		return fmt.Errorf("insert seat: %w", err)
	}
	return nil
}

// Update persists label/floor/zone changes on a seat.
func (r *SeatRepository) Update(ctx context.Context, seat *models.Seat) error {
	seat.UpdatedAt = time.Now().UTC()
	const query = `UPDATE seats SET label = :label, floor = :floor, zone = :zone, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, seat)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSeatLabel
		}
		return fmt.Errorf("update seat: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update seat rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetMaintenance toggles the maintenance flag. Enabling maintenance locks
// the seat row and refuses when a booking is active at that instant, so the
// flag can never race a concurrent reservation.
func (r *SeatRepository) SetMaintenance(ctx context.Context, seatID string, enabled bool, asOf time.Time) (seat *models.Seat, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin maintenance transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.Seat
	const lockQuery = `SELECT id, label, floor, zone, maintenance, created_at, updated_at FROM seats WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &current, lockQuery, seatID); err != nil {
		return nil, err
	}

	if enabled {
		var occupied int
		const activeQuery = `SELECT COUNT(*) FROM bookings WHERE seat_id = $1 AND status = $2 AND start_time <= $3 AND $3 < end_time`
		if err = tx.GetContext(ctx, &occupied, activeQuery, seatID, models.BookingActive, asOf); err != nil {
			return nil, fmt.Errorf("check seat occupancy: %w", err)
		}
		if occupied > 0 {
			err = ErrSeatOccupied
			return nil, err
		}
	}

	current.Maintenance = enabled
	current.UpdatedAt = time.Now().UTC()
	const updateQuery = `UPDATE seats SET maintenance = $1, updated_at = $2 WHERE id = $3`
	if _, err = tx.ExecContext(ctx, updateQuery, current.Maintenance, current.UpdatedAt, seatID); err != nil {
		return nil, fmt.Errorf("update seat maintenance: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit seat maintenance: %w", err)
	}
	return &current, nil
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
