package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readhall/seatdesk-api/internal/dto"
	"github.com/readhall/seatdesk-api/internal/models"
	"github.com/readhall/seatdesk-api/internal/repository"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
)

type seatStoreStub struct {
	seats          []models.Seat
	seatByID       map[string]*models.Seat
	listErr        error
	createErr      error
	updateErr      error
	maintainSeat   *models.Seat
	maintainErr    error
	maintainCalled bool
}

func (s *seatStoreStub) List(ctx context.Context, filter models.SeatFilter) ([]models.Seat, int, error) {
	return s.seats, len(s.seats), s.listErr
}

func (s *seatStoreStub) ListAll(ctx context.Context) ([]models.Seat, error) {
	return s.seats, s.listErr
}

func (s *seatStoreStub) FindByID(ctx context.Context, id string) (*models.Seat, error) {
	if seat, ok := s.seatByID[id]; ok {
		return seat, nil
	}
	return nil, sql.ErrNoRows
}

func (s *seatStoreStub) Create(ctx context.Context, seat *models.Seat) error {
	if s.createErr != nil {
		return s.createErr
	}
	seat.ID = "seat-new"
	return nil
}

func (s *seatStoreStub) Update(ctx context.Context, seat *models.Seat) error {
	return s.updateErr
}

func (s *seatStoreStub) SetMaintenance(ctx context.Context, seatID string, enabled bool, asOf time.Time) (*models.Seat, error) {
	s.maintainCalled = true
	if s.maintainErr != nil {
		return nil, s.maintainErr
	}
	return s.maintainSeat, nil
}

type seatBookingsStub struct {
	perSeat map[string][]models.Booking
	err     error
}

func (s seatBookingsStub) ListActiveForSeat(ctx context.Context, seatID string, from, until time.Time) ([]models.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.perSeat[seatID], nil
}

func (s seatBookingsStub) ListActiveForSeats(ctx context.Context, seatIDs []string, from, until time.Time) (map[string][]models.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.perSeat, nil
}

func newSeatServiceForTest(repo *seatStoreStub, bookings seatBookingsStub, audit *auditStub) *SeatService {
	var recorder auditRecorder
	if audit != nil {
		recorder = audit
	}
	svc := NewSeatService(repo, bookings, nil, recorder, nil, nil, nil, 30*time.Minute)
	svc.now = fixedNow
	return svc
}

func TestSeatServiceListProjectsStatus(t *testing.T) {
	now := fixedNow()
	repo := &seatStoreStub{seats: []models.Seat{
		{ID: "seat-1", Label: "A-01", Floor: 1},
		{ID: "seat-2", Label: "A-02", Floor: 1},
		{ID: "seat-3", Label: "A-03", Floor: 1, Maintenance: true},
	}}
	bookings := seatBookingsStub{perSeat: map[string][]models.Booking{
		"seat-1": {{StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: models.BookingActive}},
		"seat-2": {{StartTime: now.Add(10 * time.Minute), EndTime: now.Add(2 * time.Hour), Status: models.BookingActive}},
	}}
	svc := newSeatServiceForTest(repo, bookings, nil)

	seats, pagination, err := svc.List(context.Background(), models.SeatFilter{})
	require.NoError(t, err)
	require.Len(t, seats, 3)
	assert.Equal(t, models.SeatOccupied, seats[0].Status)
	assert.Equal(t, models.SeatReserved, seats[1].Status)
	assert.Equal(t, models.SeatMaintenance, seats[2].Status)
	require.NotNil(t, pagination)
	assert.Equal(t, 3, pagination.TotalCount)
}

func TestSeatServiceGetNotFound(t *testing.T) {
	svc := newSeatServiceForTest(&seatStoreStub{}, seatBookingsStub{}, nil)

	_, err := svc.Get(context.Background(), "seat-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSeatServiceCreateDuplicateLabel(t *testing.T) {
	repo := &seatStoreStub{createErr: repository.ErrDuplicateSeatLabel}
	svc := newSeatServiceForTest(repo, seatBookingsStub{}, nil)

	_, err := svc.Create(context.Background(), dto.CreateSeatRequest{Label: "A-01", Floor: 1, Zone: "quiet"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSeatServiceCreate(t *testing.T) {
	repo := &seatStoreStub{}
	audit := &auditStub{}
	svc := newSeatServiceForTest(repo, seatBookingsStub{}, audit)

	seat, err := svc.Create(context.Background(), dto.CreateSeatRequest{Label: "A-01", Floor: 1, Zone: "quiet"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "seat-new", seat.ID)
	assert.Equal(t, []string{models.AuditActionSeatCreate}, audit.actions)
}

func TestSeatServiceSetMaintenanceOccupied(t *testing.T) {
	repo := &seatStoreStub{maintainErr: repository.ErrSeatOccupied}
	svc := newSeatServiceForTest(repo, seatBookingsStub{}, nil)

	_, err := svc.SetMaintenance(context.Background(), "seat-1", true, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.True(t, repo.maintainCalled)
}

func TestSeatServiceSetMaintenance(t *testing.T) {
	repo := &seatStoreStub{maintainSeat: &models.Seat{ID: "seat-1", Maintenance: true}}
	audit := &auditStub{}
	svc := newSeatServiceForTest(repo, seatBookingsStub{}, audit)

	seat, err := svc.SetMaintenance(context.Background(), "seat-1", true, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SeatMaintenance, seat.Status)
	assert.Equal(t, []string{models.AuditActionSeatMaintenance}, audit.actions)
}

func TestSeatServiceSetMaintenanceNotFound(t *testing.T) {
	repo := &seatStoreStub{maintainErr: sql.ErrNoRows}
	svc := newSeatServiceForTest(repo, seatBookingsStub{}, nil)

	_, err := svc.SetMaintenance(context.Background(), "seat-404", true, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSeatServiceSummary(t *testing.T) {
	now := fixedNow()
	repo := &seatStoreStub{seats: []models.Seat{
		{ID: "seat-1", Floor: 1},
		{ID: "seat-2", Floor: 1, Maintenance: true},
		{ID: "seat-3", Floor: 2},
		{ID: "seat-4", Floor: 2},
	}}
	bookings := seatBookingsStub{perSeat: map[string][]models.Booking{
		"seat-3": {{StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: models.BookingActive}},
		"seat-4": {{StartTime: now.Add(5 * time.Minute), EndTime: now.Add(time.Hour), Status: models.BookingActive}},
	}}
	svc := newSeatServiceForTest(repo, bookings, nil)

	summary, cacheHit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.Len(t, summary, 2)

	assert.Equal(t, models.FloorOccupancy{Floor: 1, Available: 1, Maintenance: 1}, summary[0])
	assert.Equal(t, models.FloorOccupancy{Floor: 2, Occupied: 1, Reserved: 1}, summary[1])
}
