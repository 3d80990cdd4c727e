package v1

import (
	"net/http"

	"github.com/flexprice/proratemate/internal/api/dto"
	ierr "github.com/flexprice/proratemate/internal/errors"
	"github.com/flexprice/proratemate/internal/logger"
	"github.com/flexprice/proratemate/internal/service"
	"github.com/flexprice/proratemate/internal/types"
	"github.com/gin-gonic/gin"
)

type ProrationHandler struct {
	service service.ProrationService
	log     *logger.Logger
}

func NewProrationHandler(
	service service.ProrationService,
	log *logger.Logger,
) *ProrationHandler {
	return &ProrationHandler{
		service: service,
		log:     log,
	}
}

// ListBillingPeriods returns the billing periods between an effective date
// and the current period end.
func (h *ProrationHandler) ListBillingPeriods(c *gin.Context) {
	var req dto.BillingPeriodsRequest
	if !h.bind(c, &req, "list_billing_periods") {
		return
	}

	resp, err := h.service.ListBillingPeriods(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PreviewServiceEnd returns the credit owed for a cancellation
func (h *ProrationHandler) PreviewServiceEnd(c *gin.Context) {
	var req dto.ServiceEndPreviewRequest
	if !h.bind(c, &req, "preview_service_end") {
		return
	}

	resp, err := h.service.PreviewServiceEnd(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PreviewServiceStart returns the charge owed for a service start
func (h *ProrationHandler) PreviewServiceStart(c *gin.Context) {
	var req dto.ServiceStartPreviewRequest
	if !h.bind(c, &req, "preview_service_start") {
		return
	}

	resp, err := h.service.PreviewServiceStart(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PreviewPlanChange returns the credits and charges of a plan change
func (h *ProrationHandler) PreviewPlanChange(c *gin.Context) {
	var req dto.PlanChangePreviewRequest
	if !h.bind(c, &req, "preview_plan_change") {
		return
	}

	resp, err := h.service.PreviewPlanChange(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProrationHandler) bind(c *gin.Context, req any, operation string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.log.Debugw("rejected malformed proration request",
			"request_id", types.GetRequestID(c.Request.Context()),
			"operation", operation,
			"error", err,
		)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return false
	}
	return true
}
