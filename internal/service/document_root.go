package service

import (
	"context"
	"time"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/database"
	"github.com/ivopashov/classdocs/internal/gateway"
	"github.com/ivopashov/classdocs/internal/models"
	"github.com/ivopashov/classdocs/internal/snowflake"
)

// DocumentRootService handles document root and permission business logic.
type DocumentRootService struct {
	roots     database.DocumentRootRepository
	perms     database.PermissionRepository
	users     database.UserRepository
	groups    database.GroupRepository
	snowflake *snowflake.Generator
	gateway   gateway.Dispatcher
	checker   *AccessChecker
}

// NewDocumentRootService creates a DocumentRootService.
func NewDocumentRootService(
	roots database.DocumentRootRepository,
	perms database.PermissionRepository,
	users database.UserRepository,
	groups database.GroupRepository,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	checker *AccessChecker,
) *DocumentRootService {
	return &DocumentRootService{
		roots:     roots,
		perms:     perms,
		users:     users,
		groups:    groups,
		snowflake: sf,
		gateway:   gw,
		checker:   checker,
	}
}

// CreateRoot creates a document root. Elevated actors only.
func (s *DocumentRootService) CreateRoot(ctx context.Context, userID int64, role access.Role, name string, sharedAccess access.Level) (*models.DocumentRoot, error) {
	if err := RequireElevated(role); err != nil {
		return nil, err
	}
	if len(name) < 1 || len(name) > 200 {
		return nil, BadRequest("INVALID_NAME", "root name must be 1-200 characters")
	}
	if !sharedAccess.Valid() {
		return nil, BadRequest("INVALID_ACCESS", "shared access must be None, RO, or RW")
	}

	root := &models.DocumentRoot{
		ID:           s.snowflake.Generate().Int64(),
		Name:         name,
		SharedAccess: sharedAccess,
		CreatedBy:    userID,
		CreatedAt:    time.Now(),
	}
	if err := s.roots.Create(ctx, root); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	audience, err := s.checker.AudienceForRoot(ctx, root.ID, userID)
	if err == nil {
		s.gateway.DispatchToAudience(audience, gateway.EventDocumentRootCreate, root)
	}
	return root, nil
}

// GetRoot returns a root the user can read, including its grants.
func (s *DocumentRootService) GetRoot(ctx context.Context, userID int64, role access.Role, rootID int64) (*models.DocumentRoot, []models.RootUserPermission, []models.RootGroupPermission, error) {
	root, err := s.checker.RequireRootAccess(ctx, userID, role, rootID, access.LevelRO)
	if err != nil {
		return nil, nil, nil, err
	}

	userPerms, err := s.perms.GetUserPermissions(ctx, rootID)
	if err != nil {
		return nil, nil, nil, Internal("INTERNAL", "internal server error")
	}
	groupPerms, err := s.perms.GetGroupPermissions(ctx, rootID)
	if err != nil {
		return nil, nil, nil, Internal("INTERNAL", "internal server error")
	}
	return root, userPerms, groupPerms, nil
}

// ListRoots returns the roots the user can read. Admins see every root.
func (s *DocumentRootService) ListRoots(ctx context.Context, userID int64, role access.Role) ([]models.DocumentRoot, error) {
	all, err := s.roots.List(ctx)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if role == access.RoleAdmin {
		if all == nil {
			all = []models.DocumentRoot{}
		}
		return all, nil
	}

	actor, err := s.checker.ActorFor(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	visible := []models.DocumentRoot{}
	for _, root := range all {
		snap, err := s.checker.LoadRootSnapshot(ctx, root.ID)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			continue
		}
		if access.EffectiveAccess(actor, *snap) != access.LevelNone {
			visible = append(visible, root)
		}
	}
	return visible, nil
}

// UpdateRoot updates a root's name and/or shared access. Elevated actors
// with RW only; shared access would otherwise let any writer reconfigure
// the root itself.
func (s *DocumentRootService) UpdateRoot(ctx context.Context, userID int64, role access.Role, rootID int64, name *string, sharedAccess *access.Level) (*models.DocumentRoot, error) {
	if err := RequireElevated(role); err != nil {
		return nil, err
	}
	root, err := s.checker.RequireRootAccess(ctx, userID, role, rootID, access.LevelRW)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if len(*name) < 1 || len(*name) > 200 {
			return nil, BadRequest("INVALID_NAME", "root name must be 1-200 characters")
		}
		root.Name = *name
	}
	if sharedAccess != nil {
		if !sharedAccess.Valid() {
			return nil, BadRequest("INVALID_ACCESS", "shared access must be None, RO, or RW")
		}
		root.SharedAccess = *sharedAccess
	}

	if err := s.roots.Update(ctx, root); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	audience, err := s.checker.AudienceForRoot(ctx, rootID, userID)
	if err == nil {
		s.gateway.DispatchToAudience(audience, gateway.EventDocumentRootUpdate, root)
	}
	return root, nil
}

// DeleteRoot deletes a root and everything under it. Elevated actors with RW
// only.
func (s *DocumentRootService) DeleteRoot(ctx context.Context, userID int64, role access.Role, rootID int64) error {
	if err := RequireElevated(role); err != nil {
		return err
	}
	root, err := s.checker.RequireRootAccess(ctx, userID, role, rootID, access.LevelRW)
	if err != nil {
		return err
	}

	// Capture the audience before the grants go away with the root.
	audience, audErr := s.checker.AudienceForRoot(ctx, rootID, userID)

	if err := s.roots.Delete(ctx, rootID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	if audErr == nil {
		s.gateway.DispatchToAudience(audience, gateway.EventDocumentRootDelete, map[string]string{
			"id": snowflake.ID(root.ID).String(),
		})
	}
	return nil
}

// PermissionUpdateData is the PERMISSION_UPDATE event payload.
type PermissionUpdateData struct {
	RootID  int64         `json:"root_id,string"`
	UserID  *int64        `json:"user_id,string,omitempty"`
	GroupID *int64        `json:"group_id,string,omitempty"`
	Access  *access.Level `json:"access,omitempty"`
	Removed bool          `json:"removed,omitempty"`
}

// SetUserPermission grants or overwrites a user's level on a root. Requires
// RW on the root and an elevated role.
func (s *DocumentRootService) SetUserPermission(ctx context.Context, actorID int64, role access.Role, rootID, targetUserID int64, level access.Level) (*models.RootUserPermission, error) {
	if err := RequireElevated(role); err != nil {
		return nil, err
	}
	if _, err := s.checker.RequireRootAccess(ctx, actorID, role, rootID, access.LevelRW); err != nil {
		return nil, err
	}
	if !level.Valid() {
		return nil, BadRequest("INVALID_ACCESS", "access must be None, RO, or RW")
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if target == nil {
		return nil, NotFound("NOT_FOUND", "user not found")
	}

	perm := &models.RootUserPermission{RootID: rootID, UserID: targetUserID, Access: level}
	if err := s.perms.SetUserPermission(ctx, perm); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.dispatchPermissionUpdate(ctx, actorID, PermissionUpdateData{
		RootID: rootID,
		UserID: &targetUserID,
		Access: &level,
	}, targetUserID)
	return perm, nil
}

// DeleteUserPermission removes a user's grant, reverting them to the root's
// shared access.
func (s *DocumentRootService) DeleteUserPermission(ctx context.Context, actorID int64, role access.Role, rootID, targetUserID int64) error {
	if err := RequireElevated(role); err != nil {
		return err
	}
	if _, err := s.checker.RequireRootAccess(ctx, actorID, role, rootID, access.LevelRW); err != nil {
		return err
	}

	if err := s.perms.DeleteUserPermission(ctx, rootID, targetUserID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.dispatchPermissionUpdate(ctx, actorID, PermissionUpdateData{
		RootID:  rootID,
		UserID:  &targetUserID,
		Removed: true,
	}, targetUserID)
	return nil
}

// SetGroupPermission grants or overwrites a group's level on a root. The
// actor needs RW on the root and management rights over the target group.
func (s *DocumentRootService) SetGroupPermission(ctx context.Context, actorID int64, role access.Role, rootID, groupID int64, level access.Level) (*models.RootGroupPermission, error) {
	if err := RequireElevated(role); err != nil {
		return nil, err
	}
	if _, err := s.checker.RequireRootAccess(ctx, actorID, role, rootID, access.LevelRW); err != nil {
		return nil, err
	}
	if err := s.checker.RequireGroupAdmin(ctx, actorID, role, groupID); err != nil {
		return nil, err
	}
	if !level.Valid() {
		return nil, BadRequest("INVALID_ACCESS", "access must be None, RO, or RW")
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if group == nil {
		return nil, NotFound("NOT_FOUND", "group not found")
	}

	perm := &models.RootGroupPermission{RootID: rootID, GroupID: groupID, Access: level}
	if err := s.perms.SetGroupPermission(ctx, perm); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.dispatchPermissionUpdate(ctx, actorID, PermissionUpdateData{
		RootID:  rootID,
		GroupID: &groupID,
		Access:  &level,
	}, 0)
	s.gateway.DispatchToRoom(access.GroupRoom(groupID), gateway.EventPermissionUpdate, PermissionUpdateData{
		RootID:  rootID,
		GroupID: &groupID,
		Access:  &level,
	})
	return perm, nil
}

// DeleteGroupPermission removes a group's grant on a root. Gated like
// SetGroupPermission.
func (s *DocumentRootService) DeleteGroupPermission(ctx context.Context, actorID int64, role access.Role, rootID, groupID int64) error {
	if err := RequireElevated(role); err != nil {
		return err
	}
	if _, err := s.checker.RequireRootAccess(ctx, actorID, role, rootID, access.LevelRW); err != nil {
		return err
	}
	if err := s.checker.RequireGroupAdmin(ctx, actorID, role, groupID); err != nil {
		return err
	}

	if err := s.perms.DeleteGroupPermission(ctx, rootID, groupID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	data := PermissionUpdateData{RootID: rootID, GroupID: &groupID, Removed: true}
	s.dispatchPermissionUpdate(ctx, actorID, data, 0)
	s.gateway.DispatchToRoom(access.GroupRoom(groupID), gateway.EventPermissionUpdate, data)
	return nil
}

// dispatchPermissionUpdate notifies the root's current audience of a grant
// change. The affected user is told directly even when the change removed
// their access, so their client can drop the root.
func (s *DocumentRootService) dispatchPermissionUpdate(ctx context.Context, actorID int64, data PermissionUpdateData, affectedUserID int64) {
	audience, err := s.checker.AudienceForRoot(ctx, data.RootID, actorID)
	if err == nil {
		s.gateway.DispatchToAudience(audience, gateway.EventPermissionUpdate, data)
	}
	if affectedUserID != 0 {
		s.gateway.DispatchToUser(affectedUserID, gateway.EventPermissionUpdate, data)
	}
}
