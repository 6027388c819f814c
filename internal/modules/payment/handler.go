package payment

import (
	"errors"
	"net/http"
	"strconv"

	"evisa/internal/middleware"
	"evisa/internal/pkg/response"
	"evisa/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	apps := protected.Group("/applications")
	{
		apps.GET("/:id/payments", h.List)
		apps.POST("/:id/payments", middleware.StaffOnly(), h.Record)
	}
}

// Record godoc
// @Summary Record a payment for an application
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body RecordRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Failure 400,403,404 {object} response.Envelope
// @Router /applications/{id}/payments [post]
func (h *Handler) Record(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}
	appID, ok := parseID(c)
	if !ok {
		return
	}

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment fields", errs)
		return
	}

	p, err := h.service.Record(c.Request.Context(), caller, appID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Payment recorded successfully", p)
}

func (h *Handler) List(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}
	appID, ok := parseID(c)
	if !ok {
		return
	}

	list, err := h.service.List(c.Request.Context(), caller, appID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, list, len(list))
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid application ID")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrApplicationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Application not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not authorized")
	case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidMethod):
		response.Error(c, http.StatusBadRequest, "INVALID_PAYMENT", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
