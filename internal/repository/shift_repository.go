package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/readhall/seatdesk-api/internal/models"
)

// ShiftRepository manages persistence for shift templates.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs a ShiftRepository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// List returns all shifts ordered by start time.
func (r *ShiftRepository) List(ctx context.Context) ([]models.Shift, error) {
	const query = `SELECT id, name, start_time, end_time, overnight, capacity, zone, created_at, updated_at
FROM shifts ORDER BY start_time ASC, name ASC`
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, nil
}

// FindByID fetches a shift by ID.
func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	const query = `SELECT id, name, start_time, end_time, overnight, capacity, zone, created_at, updated_at
FROM shifts WHERE id = $1`
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, id); err != nil {
		return nil, err
	}
	return &shift, nil
}

// Create inserts a new shift template.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	shift.CreatedAt = now
	shift.UpdatedAt = now

	const query = `INSERT INTO shifts (id, name, start_time, end_time, overnight, capacity, zone, created_at, updated_at)
VALUES (:id, :name, :start_time, :end_time, :overnight, :capacity, :zone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

// Update persists changes to a shift template.
func (r *ShiftRepository) Update(ctx context.Context, shift *models.Shift) error {
	shift.UpdatedAt = time.Now().UTC()
	const query = `UPDATE shifts SET name = :name, start_time = :start_time, end_time = :end_time,
overnight = :overnight, capacity = :capacity, zone = :zone, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, shift)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shift rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a shift template.
func (r *ShiftRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM shifts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete shift rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
