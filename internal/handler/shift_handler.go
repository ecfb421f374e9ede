package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readhall/seatdesk-api/internal/dto"
	"github.com/readhall/seatdesk-api/internal/middleware"
	"github.com/readhall/seatdesk-api/internal/models"
	appErrors "github.com/readhall/seatdesk-api/pkg/errors"
	"github.com/readhall/seatdesk-api/pkg/response"
)

// ShiftServiceAPI abstracts the shift catalog for the HTTP layer.
type ShiftServiceAPI interface {
	List(ctx context.Context) ([]models.Shift, bool, error)
	Get(ctx context.Context, shiftID string) (*models.Shift, error)
	Create(ctx context.Context, req dto.CreateShiftRequest, actor *models.JWTClaims) (*models.Shift, error)
	Update(ctx context.Context, shiftID string, req dto.UpdateShiftRequest, actor *models.JWTClaims) (*models.Shift, error)
	Delete(ctx context.Context, shiftID string, actor *models.JWTClaims) error
}

// ShiftHandler exposes shift catalog endpoints.
type ShiftHandler struct {
	shifts ShiftServiceAPI
}

// NewShiftHandler constructs ShiftHandler.
func NewShiftHandler(shifts ShiftServiceAPI) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

// List godoc
// @Summary List shift templates
// @Tags Shifts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shifts [get]
func (h *ShiftHandler) List(c *gin.Context) {
	shifts, cacheHit, err := h.shifts.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, shifts, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get shift detail
// @Tags Shifts
// @Produce json
// @Param id path string true "Shift ID"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id} [get]
func (h *ShiftHandler) Get(c *gin.Context) {
	shift, err := h.shifts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shift, nil)
}

// Create godoc
// @Summary Create shift template
// @Tags Shifts
// @Accept json
// @Produce json
// @Param payload body dto.CreateShiftRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Router /shifts [post]
func (h *ShiftHandler) Create(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	shift, err := h.shifts.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, shift)
}

// Update godoc
// @Summary Update shift template
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param payload body dto.UpdateShiftRequest true "Shift payload"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id} [put]
func (h *ShiftHandler) Update(c *gin.Context) {
	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	shift, err := h.shifts.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shift, nil)
}

// Delete godoc
// @Summary Delete shift template
// @Tags Shifts
// @Produce json
// @Param id path string true "Shift ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /shifts/{id} [delete]
func (h *ShiftHandler) Delete(c *gin.Context) {
	if err := h.shifts.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
