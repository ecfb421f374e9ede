package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readhall/seatdesk-api/internal/dto"
	"github.com/readhall/seatdesk-api/internal/middleware"
	"github.com/readhall/seatdesk-api/internal/models"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
)

type seatServiceMock struct {
	listResp       []models.SeatWithStatus
	listErr        error
	getResp        *models.SeatWithStatus
	getErr         error
	createResp     *models.Seat
	createErr      error
	updateResp     *models.Seat
	updateErr      error
	maintainResp   *models.SeatWithStatus
	maintainErr    error
	summaryResp    []models.FloorOccupancy
	summaryErr     error
	lastFilter     models.SeatFilter
	lastEnabled    bool
	maintainCalled bool
}

func (m *seatServiceMock) List(ctx context.Context, filter models.SeatFilter) ([]models.SeatWithStatus, *models.Pagination, error) {
	m.lastFilter = filter
	return m.listResp, &models.Pagination{Page: 1, PageSize: 50, TotalCount: len(m.listResp)}, m.listErr
}

func (m *seatServiceMock) Get(ctx context.Context, seatID string) (*models.SeatWithStatus, error) {
	return m.getResp, m.getErr
}

func (m *seatServiceMock) Create(ctx context.Context, req dto.CreateSeatRequest, actor *models.JWTClaims) (*models.Seat, error) {
	return m.createResp, m.createErr
}

func (m *seatServiceMock) Update(ctx context.Context, seatID string, req dto.UpdateSeatRequest, actor *models.JWTClaims) (*models.Seat, error) {
	return m.updateResp, m.updateErr
}

func (m *seatServiceMock) SetMaintenance(ctx context.Context, seatID string, enabled bool, actor *models.JWTClaims) (*models.SeatWithStatus, error) {
	m.maintainCalled = true
	m.lastEnabled = enabled
	return m.maintainResp, m.maintainErr
}

func (m *seatServiceMock) Summary(ctx context.Context) ([]models.FloorOccupancy, bool, error) {
	return m.summaryResp, false, m.summaryErr
}

type seatBookingsMock struct {
	resp      []models.Booking
	err       error
	lastAsOf  *time.Time
	wasCalled bool
}

func (m *seatBookingsMock) ListActiveForSeat(ctx context.Context, seatID string, asOf *time.Time) ([]models.Booking, error) {
	m.wasCalled = true
	m.lastAsOf = asOf
	return m.resp, m.err
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func TestSeatHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &seatServiceMock{
		listResp: []models.SeatWithStatus{
			{Seat: models.Seat{ID: "seat-1", Label: "A-01"}, Status: models.SeatAvailable},
		},
	}
	handler := NewSeatHandler(mockSvc, &seatBookingsMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/seats?floor=2&zone=quiet", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastFilter.Floor)
	assert.Equal(t, 2, *mockSvc.lastFilter.Floor)
	assert.Equal(t, "quiet", mockSvc.lastFilter.Zone)
}

func TestSeatHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &seatServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "seat not found")}
	handler := NewSeatHandler(mockSvc, &seatBookingsMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/seats/seat-404", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "seat-404"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeatHandlerSetMaintenance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &seatServiceMock{
		maintainResp: &models.SeatWithStatus{
			Seat:   models.Seat{ID: "seat-1", Maintenance: true},
			Status: models.SeatMaintenance,
		},
	}
	handler := NewSeatHandler(mockSvc, &seatBookingsMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/seats/seat-1/maintenance", bytes.NewBufferString(`{"enabled":true}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "seat-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.SetMaintenance(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.maintainCalled)
	assert.True(t, mockSvc.lastEnabled)
}

func TestSeatHandlerSetMaintenanceMissingFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSeatHandler(&seatServiceMock{}, &seatBookingsMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/seats/seat-1/maintenance", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "seat-1"}}

	handler.SetMaintenance(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSeatHandlerSetMaintenanceOccupiedConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &seatServiceMock{
		maintainErr: appErrors.Clone(appErrors.ErrConflict, "seat is currently occupied"),
	}
	handler := NewSeatHandler(mockSvc, &seatBookingsMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/seats/seat-1/maintenance", bytes.NewBufferString(`{"enabled":true}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "seat-1"}}

	handler.SetMaintenance(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSeatHandlerSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &seatServiceMock{
		summaryResp: []models.FloorOccupancy{{Floor: 1, Available: 10, Occupied: 2}},
	}
	handler := NewSeatHandler(mockSvc, &seatBookingsMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/seats/summary", nil)
	c.Request = req

	handler.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.FloorOccupancy `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, 10, envelope.Data[0].Available)
}

func TestSeatHandlerListBookings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bookings := &seatBookingsMock{resp: []models.Booking{{ID: "booking-1"}}}
	handler := NewSeatHandler(&seatServiceMock{}, bookings)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/seats/seat-1/bookings?asOf=2025-03-14T10:00:00Z", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "seat-1"}}

	handler.ListBookings(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bookings.wasCalled)
	require.NotNil(t, bookings.lastAsOf)
	assert.Equal(t, time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC), bookings.lastAsOf.UTC())
}

func TestSeatHandlerListBookingsBadAsOf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSeatHandler(&seatServiceMock{}, &seatBookingsMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/seats/seat-1/bookings?asOf=tomorrow", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "seat-1"}}

	handler.ListBookings(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
