package application

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

// RegisterPublicRoutes mounts the booking lookup. extra runs before the
// handler, e.g. a rate limiter.
func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup, extra ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, extra...), h.GetByBookingNumber)
	api.GET("/applications/booking/:bookingNumber", handlers...)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	apps := protected.Group("/applications")
	{
		apps.GET("", h.ListMine)
		apps.POST("", h.Create)
		apps.GET("/:id", h.Get)
		apps.PUT("/:id", h.Update)
		apps.DELETE("/:id", h.Delete)
		apps.PUT("/:id/submit", h.Submit)
	}

	staff := apps.Group("", middleware.StaffOnly())
	{
		staff.GET("/admin/all", h.AdminList)
		staff.GET("/admin/stats", h.Stats)
		staff.PUT("/:id/status", h.UpdateStatus)
	}
}

// Create godoc
// @Summary Create a draft application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Failure 400,401,500 {object} response.Envelope
// @Router /applications [post]
func (h *Handler) Create(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}

	var req ApplicationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid application fields", errs)
		return
	}

	app, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Application created successfully", app)
}

func (h *Handler) ListMine(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}

	apps, err := h.service.ListMine(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, apps, len(apps))
}

func (h *Handler) Get(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	app, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

// GetByBookingNumber godoc
// @Summary Public lookup by booking number
// @Tags Applications
// @Produce json
// @Param bookingNumber path string true "Booking number, e.g. TH-2025-1234"
// @Success 200 {object} response.Envelope
// @Failure 404,429 {object} response.Envelope
// @Router /applications/booking/{bookingNumber} [get]
func (h *Handler) GetByBookingNumber(c *gin.Context) {
	app, err := h.service.GetByBookingNumber(c.Request.Context(), c.Param("bookingNumber"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

func (h *Handler) Update(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ApplicationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid application fields", errs)
		return
	}

	app, err := h.service.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Application updated successfully", app)
}

func (h *Handler) Submit(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	app, err := h.service.Submit(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Application submitted successfully", app)
}

func (h *Handler) Delete(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Application deleted successfully", nil)
}

// AdminList godoc
// @Summary Search all applications
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Exact status"
// @Param search query string false "Booking number, name, email or passport"
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size, default 10, max 100"
// @Success 200 {object} response.Envelope
// @Router /applications/admin/all [get]
func (h *Handler) AdminList(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	res, err := h.service.AdminList(c.Request.Context(), ListQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, res.Items, len(res.Items), res.Total, res.TotalPages, res.CurrentPage)
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	app, err := h.service.AdminUpdateStatus(c.Request.Context(), caller, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Application status updated", app)
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
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Application not found")
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusBadRequest, "INVALID_STATE", err.Error())
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
