package upload

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"evisa/internal/middleware"
	"evisa/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/upload")
	{
		g.POST("/profile-photo", h.UploadProfilePhoto)
		g.POST("/:applicationId", h.UploadDocument)
		g.GET("/:applicationId/:documentId", h.GetDocument)
		g.DELETE("/:applicationId/:documentId", h.DeleteDocument)
	}
}

// stage reads field from the multipart body. A missing file yields nil and no
// error so the service can report it.
func (h *Handler) stage(c *gin.Context, field string) (*StagedFile, error) {
	stager := h.service.Stager()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, stager.MaxSize()+formOverhead)

	fh, err := c.FormFile(field)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, ErrFileTooLarge
		}
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrNoFile, err)
	}
	return stager.Stage(c.Request.Context(), field, fh)
}

// UploadDocument godoc
// @Summary Attach a document to an application
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param applicationId path int true "Application ID"
// @Param document formData file true "jpeg, png or pdf"
// @Param documentType formData string false "Document type, default Other"
// @Success 200 {object} response.Envelope
// @Failure 400,403,404,413 {object} response.Envelope
// @Router /upload/{applicationId} [post]
func (h *Handler) UploadDocument(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}
	appID, ok := parseAppID(c)
	if !ok {
		return
	}

	staged, err := h.stage(c, "document")
	if err != nil {
		writeError(c, err)
		return
	}

	docType := c.PostForm("documentType")
	if docType == "" {
		docType = c.PostForm("document_type")
	}

	doc, err := h.service.UploadDocument(c.Request.Context(), caller, appID, staged, docType)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Document uploaded successfully", doc)
}

func (h *Handler) GetDocument(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}
	appID, ok := parseAppID(c)
	if !ok {
		return
	}

	rc, doc, err := h.service.OpenDocument(c.Request.Context(), caller, appID, c.Param("documentId"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := doc.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", doc.FileName),
	})
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}
	appID, ok := parseAppID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDocument(c.Request.Context(), caller, appID, c.Param("documentId")); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Document deleted successfully", nil)
}

func (h *Handler) UploadProfilePhoto(c *gin.Context) {
	caller, ok := middleware.MustCaller(c)
	if !ok {
		return
	}

	staged, err := h.stage(c, "photo")
	if err != nil {
		writeError(c, err)
		return
	}

	photo, err := h.service.UploadProfilePhoto(c.Request.Context(), caller, staged)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Profile photo uploaded successfully", photo)
}

func parseAppID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("applicationId"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid application ID")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusBadRequest, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, ErrNoFile), errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrInvalidFileType), errors.Is(err, ErrInvalidDocumentType):
		response.Error(c, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
	case errors.Is(err, ErrApplicationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Application not found")
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrStoredObjectNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Document not found")
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not authorized")
	case errors.Is(err, ErrNotEditable):
		response.Error(c, http.StatusBadRequest, "INVALID_STATE", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
