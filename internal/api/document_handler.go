package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ivopashov/classdocs/internal/auth"
	"github.com/ivopashov/classdocs/internal/service"
)

// DocumentHandler handles document endpoints.
type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

type createDocumentRequest struct {
	ParentID   *int64 `json:"parent_id,string,omitempty"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	TemplateID *int64 `json:"template_id,string,omitempty"`
}

// CreateDocument handles POST /api/v1/document-roots/:id/documents.
func (h *DocumentHandler) CreateDocument(c echo.Context) error {
	rootID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document root id")
	}

	var req createDocumentRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	doc, err := h.service.CreateDocument(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), rootID, req.ParentID, req.Title, req.Content, req.TemplateID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, doc)
}

// GetDocument handles GET /api/v1/documents/:id.
func (h *DocumentHandler) GetDocument(c echo.Context) error {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
	}

	doc, err := h.service.GetDocument(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), documentID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, doc)
}

// ListDocuments handles GET /api/v1/document-roots/:id/documents.
func (h *DocumentHandler) ListDocuments(c echo.Context) error {
	rootID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document root id")
	}

	docs, err := h.service.ListDocuments(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), rootID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, docs)
}

type updateDocumentRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// UpdateDocument handles PATCH /api/v1/documents/:id.
func (h *DocumentHandler) UpdateDocument(c echo.Context) error {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
	}

	var req updateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	doc, err := h.service.UpdateDocument(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), documentID, req.Title, req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, doc)
}

type moveDocumentRequest struct {
	ParentID *int64 `json:"parent_id,string,omitempty"`
}

// MoveDocument handles PATCH /api/v1/documents/:id/parent.
func (h *DocumentHandler) MoveDocument(c echo.Context) error {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
	}

	var req moveDocumentRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	doc, err := h.service.MoveDocument(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), documentID, req.ParentID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/v1/documents/:id.
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
	}

	if err := h.service.DeleteDocument(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), documentID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
