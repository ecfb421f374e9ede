package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readhall/seatdesk-api/internal/models"
)

func seatColumns() []string {
	return []string{"id", "label", "floor", "zone", "maintenance", "created_at", "updated_at"}
}

func TestSeatRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSeatRepository(db)

	now := time.Now().UTC()
	floor := 2
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, label, floor, zone, maintenance, created_at, updated_at")).
		WithArgs(floor).
		WillReturnRows(sqlmock.NewRows(seatColumns()).
			AddRow("seat-1", "B-01", 2, "quiet", false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(floor).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	seats, total, err := repo.List(context.Background(), models.SeatFilter{Floor: &floor})
	require.NoError(t, err)
	require.Len(t, seats, 1)
	assert.Equal(t, "B-01", seats[0].Label)
	assert.Equal(t, 1, total)
}

func TestSeatRepositoryCreateDuplicateLabel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSeatRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seats")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	err := repo.Create(context.Background(), &models.Seat{Label: "A-01", Floor: 1, Zone: "quiet"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSeatLabel))
}

func TestSeatRepositorySetMaintenanceEnables(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSeatRepository(db)

	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	created := now.Add(-24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, label, floor, zone, maintenance, created_at, updated_at FROM seats WHERE id = $1 FOR UPDATE")).
		WithArgs("seat-1").
		WillReturnRows(sqlmock.NewRows(seatColumns()).
			AddRow("seat-1", "A-01", 1, "quiet", false, created, created))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings WHERE seat_id = $1 AND status = $2 AND start_time <= $3 AND $3 < end_time")).
		WithArgs("seat-1", models.BookingActive, now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET maintenance = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(true, sqlmock.AnyArg(), "seat-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	seat, err := repo.SetMaintenance(context.Background(), "seat-1", true, now)
	require.NoError(t, err)
	require.NotNil(t, seat)
	assert.True(t, seat.Maintenance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepositorySetMaintenanceRefusesOccupiedSeat(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSeatRepository(db)

	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	created := now.Add(-24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, label, floor, zone, maintenance, created_at, updated_at FROM seats WHERE id = $1 FOR UPDATE")).
		WithArgs("seat-1").
		WillReturnRows(sqlmock.NewRows(seatColumns()).
			AddRow("seat-1", "A-01", 1, "quiet", false, created, created))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings")).
		WithArgs("seat-1", models.BookingActive, now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.SetMaintenance(context.Background(), "seat-1", true, now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSeatOccupied))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepositorySetMaintenanceDisableSkipsOccupancyCheck(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSeatRepository(db)

	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	created := now.Add(-24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, label, floor, zone, maintenance, created_at, updated_at FROM seats WHERE id = $1 FOR UPDATE")).
		WithArgs("seat-1").
		WillReturnRows(sqlmock.NewRows(seatColumns()).
			AddRow("seat-1", "A-01", 1, "quiet", true, created, created))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET maintenance = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(false, sqlmock.AnyArg(), "seat-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	seat, err := repo.SetMaintenance(context.Background(), "seat-1", false, now)
	require.NoError(t, err)
	assert.False(t, seat.Maintenance)
	assert.NoError(t, mock.ExpectationsWereMet())
}
