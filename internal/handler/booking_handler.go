package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/readhall/seatdesk-api/internal/dto"
	"github.com/readhall/seatdesk-api/internal/models"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
	"github.com/readhall/seatdesk-api/pkg/response"
)

// BookingServiceAPI abstracts the booking lifecycle for the HTTP layer.
type BookingServiceAPI interface {
	Reserve(ctx context.Context, seatID string, req dto.ReserveRequest, actor *models.JWTClaims) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string, actor *models.JWTClaims) error
	Release(ctx context.Context, bookingID string, actor *models.JWTClaims) error
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error)
}

// BookingHandler exposes booking lifecycle endpoints.
type BookingHandler struct {
	bookings BookingServiceAPI
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(bookings BookingServiceAPI) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Reserve godoc
// @Summary Reserve a seat
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Seat ID"
// @Param payload body dto.ReserveRequest true "Reservation payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /seats/{id}/reserve [post]
func (h *BookingHandler) Reserve(c *gin.Context) {
	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	booking, err := h.bookings.Reserve(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	if err := h.bookings.Cancel(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": string(models.BookingCancelled)}, nil)
}

// Release godoc
// @Summary Release an active booking early
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /bookings/{id}/release [post]
func (h *BookingHandler) Release(c *gin.Context) {
	if err := h.bookings.Release(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": string(models.BookingCompleted)}, nil)
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param seatId query string false "Filter by seat"
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var filter models.BookingFilter
	filter.SeatID = c.Query("seatId")
	filter.StudentID = c.Query("studentId")
	if status := c.Query("status"); status != "" {
		v := models.BookingStatus(status)
		filter.Status = &v
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	bookings, pagination, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}
