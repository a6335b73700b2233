package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ivopashov/classdocs/internal/auth"
	"github.com/ivopashov/classdocs/internal/service"
)

// TemplateHandler handles document template endpoints.
type TemplateHandler struct {
	service *service.TemplateService
}

// NewTemplateHandler creates a TemplateHandler.
func NewTemplateHandler(svc *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{service: svc}
}

type createTemplateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// CreateTemplate handles POST /api/v1/templates.
func (h *TemplateHandler) CreateTemplate(c echo.Context) error {
	var req createTemplateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	tmpl, err := h.service.CreateTemplate(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), req.Name, req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, tmpl)
}

// GetTemplate handles GET /api/v1/templates/:id.
func (h *TemplateHandler) GetTemplate(c echo.Context) error {
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid template id")
	}

	tmpl, err := h.service.GetTemplate(c.Request().Context(), templateID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, tmpl)
}

// ListTemplates handles GET /api/v1/templates.
func (h *TemplateHandler) ListTemplates(c echo.Context) error {
	templates, err := h.service.ListTemplates(c.Request().Context())
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, templates)
}

type updateTemplateRequest struct {
	Name    *string `json:"name,omitempty"`
	Content *string `json:"content,omitempty"`
}

// UpdateTemplate handles PATCH /api/v1/templates/:id.
func (h *TemplateHandler) UpdateTemplate(c echo.Context) error {
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid template id")
	}

	var req updateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	tmpl, err := h.service.UpdateTemplate(c.Request().Context(), auth.GetUserRole(c), templateID, req.Name, req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, tmpl)
}

// DeleteTemplate handles DELETE /api/v1/templates/:id.
func (h *TemplateHandler) DeleteTemplate(c echo.Context) error {
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid template id")
	}

	if err := h.service.DeleteTemplate(c.Request().Context(), auth.GetUserRole(c), templateID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
