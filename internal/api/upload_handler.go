package api

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/ivopashov/classdocs/internal/auth"
	"github.com/ivopashov/classdocs/internal/service"
)

// UploadHandler handles attachment upload endpoints.
type UploadHandler struct {
	service *service.UploadService
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{service: svc}
}

// Upload handles POST /api/v1/documents/:id/attachments.
func (h *UploadHandler) Upload(c echo.Context) error {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
	}

	src, err := file.Open()
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
	defer src.Close()

	attachment, err := h.service.UploadAttachment(
		c.Request().Context(),
		auth.GetUserID(c),
		auth.GetUserRole(c),
		documentID,
		filepath.Base(file.Filename),
		file.Size,
		file.Header.Get("Content-Type"),
		src,
	)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, attachment)
}

// ListAttachments handles GET /api/v1/documents/:id/attachments.
func (h *UploadHandler) ListAttachments(c echo.Context) error {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
	}

	attachments, err := h.service.ListAttachments(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), documentID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, attachments)
}

// DeleteAttachment handles DELETE /api/v1/attachments/:id.
func (h *UploadHandler) DeleteAttachment(c echo.Context) error {
	attachmentID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid attachment id")
	}

	if err := h.service.DeleteAttachment(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), attachmentID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
