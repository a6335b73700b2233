package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ivopashov/classdocs/internal/auth"
	"github.com/ivopashov/classdocs/internal/service"
)

// GroupHandler handles group and membership endpoints.
type GroupHandler struct {
	service *service.GroupService
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(svc *service.GroupService) *GroupHandler {
	return &GroupHandler{service: svc}
}

type createGroupRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,string,omitempty"`
}

// CreateGroup handles POST /api/v1/groups.
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	var req createGroupRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	group, err := h.service.CreateGroup(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), req.Name, req.ParentID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, group)
}

// GetGroup handles GET /api/v1/groups/:id.
func (h *GroupHandler) GetGroup(c echo.Context) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid group id")
	}

	group, err := h.service.GetGroup(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), groupID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, group)
}

// ListGroups handles GET /api/v1/groups.
func (h *GroupHandler) ListGroups(c echo.Context) error {
	groups, err := h.service.ListGroups(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, groups)
}

type updateGroupRequest struct {
	Name        *string `json:"name,omitempty"`
	ParentID    *int64  `json:"parent_id,string,omitempty"`
	ClearParent bool    `json:"clear_parent,omitempty"`
}

// UpdateGroup handles PATCH /api/v1/groups/:id.
func (h *GroupHandler) UpdateGroup(c echo.Context) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid group id")
	}

	var req updateGroupRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	group, err := h.service.UpdateGroup(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), groupID, req.Name, req.ParentID, req.ClearParent)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, group)
}

// DeleteGroup handles DELETE /api/v1/groups/:id.
func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid group id")
	}

	if err := h.service.DeleteGroup(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), groupID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type addMemberRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// AddMember handles PUT /api/v1/groups/:id/members/:user_id.
func (h *GroupHandler) AddMember(c echo.Context) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid group id")
	}
	targetID, err := parseIDParam(c, "user_id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	var req addMemberRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	member, err := h.service.AddMember(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), groupID, targetID, req.IsAdmin)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, member)
}

// RemoveMember handles DELETE /api/v1/groups/:id/members/:user_id.
func (h *GroupHandler) RemoveMember(c echo.Context) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid group id")
	}
	targetID, err := parseIDParam(c, "user_id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	if err := h.service.RemoveMember(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), groupID, targetID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type setMemberAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// SetMemberAdmin handles PATCH /api/v1/groups/:id/members/:user_id.
func (h *GroupHandler) SetMemberAdmin(c echo.Context) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid group id")
	}
	targetID, err := parseIDParam(c, "user_id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	var req setMemberAdminRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	if err := h.service.SetMemberAdmin(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), groupID, targetID, req.IsAdmin); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMembers handles GET /api/v1/groups/:id/members.
func (h *GroupHandler) ListMembers(c echo.Context) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid group id")
	}

	members, err := h.service.GetMembers(c.Request().Context(), auth.GetUserID(c), auth.GetUserRole(c), groupID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, members)
}
