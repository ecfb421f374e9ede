package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/readhall/seatdesk-api/internal/models"
	"github.com/readhall/seatdesk-api/pkg/response"
)

// AuditServiceAPI exposes the audit trail read path.
type AuditServiceAPI interface {
	Trail(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error)
}

// AuditHandler exposes the audit trail endpoint.
type AuditHandler struct {
	audit AuditServiceAPI
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit AuditServiceAPI) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Trail godoc
// @Summary Audit trail for a resource
// @Tags Audit
// @Produce json
// @Param resource query string true "Resource type (seat, shift, booking, student)"
// @Param resourceId query string true "Resource ID"
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) Trail(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := h.audit.Trail(c.Request.Context(), c.Query("resource"), c.Query("resourceId"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
