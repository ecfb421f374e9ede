package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/readhall/seatdesk-api/internal/dto"
	"github.com/readhall/seatdesk-api/internal/middleware"
	"github.com/readhall/seatdesk-api/internal/models"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
	"github.com/readhall/seatdesk-api/pkg/response"
)

// SeatServiceAPI abstracts the seat registry for the HTTP layer.
type SeatServiceAPI interface {
	List(ctx context.Context, filter models.SeatFilter) ([]models.SeatWithStatus, *models.Pagination, error)
	Get(ctx context.Context, seatID string) (*models.SeatWithStatus, error)
	Create(ctx context.Context, req dto.CreateSeatRequest, actor *models.JWTClaims) (*models.Seat, error)
	Update(ctx context.Context, seatID string, req dto.UpdateSeatRequest, actor *models.JWTClaims) (*models.Seat, error)
	SetMaintenance(ctx context.Context, seatID string, enabled bool, actor *models.JWTClaims) (*models.SeatWithStatus, error)
	Summary(ctx context.Context) ([]models.FloorOccupancy, bool, error)
}

// SeatBookingAPI exposes the per-seat booking listing used by the HTTP layer.
type SeatBookingAPI interface {
	ListActiveForSeat(ctx context.Context, seatID string, asOf *time.Time) ([]models.Booking, error)
}

// SeatHandler exposes seat registry endpoints.
type SeatHandler struct {
	seats    SeatServiceAPI
	bookings SeatBookingAPI
}

// NewSeatHandler constructs SeatHandler.
func NewSeatHandler(seats SeatServiceAPI, bookings SeatBookingAPI) *SeatHandler {
	return &SeatHandler{seats: seats, bookings: bookings}
}

// List godoc
// @Summary List seats with projected status
// @Tags Seats
// @Produce json
// @Param floor query int false "Filter by floor"
// @Param zone query string false "Filter by zone"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /seats [get]
func (h *SeatHandler) List(c *gin.Context) {
	var filter models.SeatFilter
	if floor := c.Query("floor"); floor != "" {
		if v, err := strconv.Atoi(floor); err == nil {
			filter.Floor = &v
		}
	}
	filter.Zone = strings.TrimSpace(c.Query("zone"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	seats, pagination, err := h.seats.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seats, pagination)
}

// Get godoc
// @Summary Get seat detail with projected status
// @Tags Seats
// @Produce json
// @Param id path string true "Seat ID"
// @Success 200 {object} response.Envelope
// @Router /seats/{id} [get]
func (h *SeatHandler) Get(c *gin.Context) {
	seat, err := h.seats.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seat, nil)
}

// Create godoc
// @Summary Provision a seat
// @Tags Seats
// @Accept json
// @Produce json
// @Param payload body dto.CreateSeatRequest true "Seat payload"
// @Success 201 {object} response.Envelope
// @Router /seats [post]
func (h *SeatHandler) Create(c *gin.Context) {
	var req dto.CreateSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	seat, err := h.seats.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, seat)
}

// Update godoc
// @Summary Update seat attributes
// @Tags Seats
// @Accept json
// @Produce json
// @Param id path string true "Seat ID"
// @Param payload body dto.UpdateSeatRequest true "Seat payload"
// @Success 200 {object} response.Envelope
// @Router /seats/{id} [put]
func (h *SeatHandler) Update(c *gin.Context) {
	var req dto.UpdateSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	seat, err := h.seats.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seat, nil)
}

// SetMaintenance godoc
// @Summary Toggle seat maintenance flag
// @Tags Seats
// @Accept json
// @Produce json
// @Param id path string true "Seat ID"
// @Param payload body dto.SetMaintenanceRequest true "Maintenance payload"
// @Success 200 {object} response.Envelope
// @Router /seats/{id}/maintenance [put]
func (h *SeatHandler) SetMaintenance(c *gin.Context) {
	var req dto.SetMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.Enabled == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "enabled is required"))
		return
	}
	seat, err := h.seats.SetMaintenance(c.Request.Context(), c.Param("id"), *req.Enabled, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seat, nil)
}

// Summary godoc
// @Summary Occupancy summary per floor
// @Tags Seats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /seats/summary [get]
func (h *SeatHandler) Summary(c *gin.Context) {
	summary, cacheHit, err := h.seats.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// ListBookings godoc
// @Summary List active bookings for a seat
// @Tags Seats
// @Produce json
// @Param id path string true "Seat ID"
// @Param asOf query string false "Reference instant (RFC3339)"
// @Success 200 {object} response.Envelope
// @Router /seats/{id}/bookings [get]
func (h *SeatHandler) ListBookings(c *gin.Context) {
	var asOf *time.Time
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "asOf must be formatted as RFC3339"))
			return
		}
		asOf = &parsed
	}
	bookings, err := h.bookings.ListActiveForSeat(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}
