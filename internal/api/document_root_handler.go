package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/auth"
	"github.com/ivopashov/classdocs/internal/models"
	"github.com/ivopashov/classdocs/internal/service"
)

// DocumentRootHandler handles document root and permission endpoints.
type DocumentRootHandler struct {
	service *service.DocumentRootService
}

// NewDocumentRootHandler creates a DocumentRootHandler.
func NewDocumentRootHandler(svc *service.DocumentRootService) *DocumentRootHandler {
	return &DocumentRootHandler{service: svc}
}

type createRootRequest struct {
	Name         string       `json:"name"`
	SharedAccess access.Level `json:"shared_access"`
}

// CreateRoot handles POST /api/v1/document-roots.
func (h *DocumentRootHandler) CreateRoot(c echo.Context) error {
	var req createRootRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	root, err := h.service.CreateRoot(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), req.Name, req.SharedAccess)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, root)
}

type rootDetailResponse struct {
	*models.DocumentRoot
	UserPermissions  []models.RootUserPermission  `json:"user_permissions"`
	GroupPermissions []models.RootGroupPermission `json:"group_permissions"`
}

// GetRoot handles GET /api/v1/document-roots/:id.
func (h *DocumentRootHandler) GetRoot(c echo.Context) error {
	rootID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document root id")
	}

	root, userPerms, groupPerms, err := h.service.GetRoot(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), rootID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, rootDetailResponse{
		DocumentRoot:     root,
		UserPermissions:  userPerms,
		GroupPermissions: groupPerms,
	})
}

// ListRoots handles GET /api/v1/document-roots.
func (h *DocumentRootHandler) ListRoots(c echo.Context) error {
	roots, err := h.service.ListRoots(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, roots)
}

type updateRootRequest struct {
	Name         *string       `json:"name,omitempty"`
	SharedAccess *access.Level `json:"shared_access,omitempty"`
}

// UpdateRoot handles PATCH /api/v1/document-roots/:id.
func (h *DocumentRootHandler) UpdateRoot(c echo.Context) error {
	rootID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document root id")
	}

	var req updateRootRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	root, err := h.service.UpdateRoot(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), rootID, req.Name, req.SharedAccess)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, root)
}

// DeleteRoot handles DELETE /api/v1/document-roots/:id.
func (h *DocumentRootHandler) DeleteRoot(c echo.Context) error {
	rootID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document root id")
	}

	if err := h.service.DeleteRoot(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), rootID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type setPermissionRequest struct {
	Access access.Level `json:"access"`
}

// SetUserPermission handles PUT /api/v1/document-roots/:id/permissions/users/:user_id.
func (h *DocumentRootHandler) SetUserPermission(c echo.Context) error {
	rootID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document root id")
	}
	targetID, err := parseIDParam(c, "user_id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	var req setPermissionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	perm, err := h.service.SetUserPermission(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), rootID, targetID, req.Access)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, perm)
}

// DeleteUserPermission handles DELETE /api/v1/document-roots/:id/permissions/users/:user_id.
func (h *DocumentRootHandler) DeleteUserPermission(c echo.Context) error {
	rootID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document root id")
	}
	targetID, err := parseIDParam(c, "user_id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	if err := h.service.DeleteUserPermission(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), rootID, targetID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetGroupPermission handles PUT /api/v1/document-roots/:id/permissions/groups/:group_id.
func (h *DocumentRootHandler) SetGroupPermission(c echo.Context) error {
	rootID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document root id")
	}
	groupID, err := parseIDParam(c, "group_id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid group id")
	}

	var req setPermissionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	perm, err := h.service.SetGroupPermission(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), rootID, groupID, req.Access)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, perm)
}

// DeleteGroupPermission handles DELETE /api/v1/document-roots/:id/permissions/groups/:group_id.
func (h *DocumentRootHandler) DeleteGroupPermission(c echo.Context) error {
	rootID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid document root id")
	}
	groupID, err := parseIDParam(c, "group_id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid group id")
	}

	if err := h.service.DeleteGroupPermission(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), rootID, groupID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
