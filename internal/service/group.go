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

// GroupService handles group and membership business logic.
type GroupService struct {
	groups    database.GroupRepository
	users     database.UserRepository
	snowflake *snowflake.Generator
	gateway   gateway.Dispatcher
	checker   *AccessChecker
}

// NewGroupService creates a GroupService.
func NewGroupService(
	groups database.GroupRepository,
	users database.UserRepository,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	checker *AccessChecker,
) *GroupService {
	return &GroupService{
		groups:    groups,
		users:     users,
		snowflake: sf,
		gateway:   gw,
		checker:   checker,
	}
}

// CreateGroup creates a group, optionally nested under a parent. Elevated
// actors only.
func (s *GroupService) CreateGroup(ctx context.Context, userID int64, role access.Role, name string, parentID *int64) (*models.Group, error) {
	if err := RequireElevated(role); err != nil {
		return nil, err
	}
	if len(name) < 1 || len(name) > 200 {
		return nil, BadRequest("INVALID_NAME", "group name must be 1-200 characters")
	}

	if parentID != nil {
		parent, err := s.groups.GetByID(ctx, *parentID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if parent == nil {
			return nil, NotFound("NOT_FOUND", "parent group not found")
		}
	}

	group := &models.Group{
		ID:        s.snowflake.Generate().Int64(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now(),
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	// A creating Teacher gets the admin membership so they can manage the
	// group they just made. Admins manage every group regardless.
	if role == access.RoleTeacher {
		member := &models.GroupMember{
			GroupID:  group.ID,
			UserID:   userID,
			IsAdmin:  true,
			JoinedAt: group.CreatedAt,
		}
		if err := s.groups.AddMember(ctx, member); err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		for _, roomID := range s.groupRoomChain(ctx, group.ID) {
			s.gateway.JoinRoom(userID, roomID)
		}
	}

	s.gateway.DispatchToRoom(access.RoomAdmin, gateway.EventGroupCreate, group)
	return group, nil
}

// GetGroup returns a group visible to the user: elevated actors see every
// group, students see groups their memberships reach.
func (s *GroupService) GetGroup(ctx context.Context, userID int64, role access.Role, groupID int64) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if group == nil {
		return nil, NotFound("NOT_FOUND", "group not found")
	}

	if role.HasElevatedAccess() {
		return group, nil
	}

	actor, err := s.checker.ActorFor(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	for _, id := range actor.GroupIDs {
		if id == groupID {
			return group, nil
		}
	}
	return nil, NotFound("NOT_FOUND", "group not found")
}

// ListGroups returns the groups the user may see.
func (s *GroupService) ListGroups(ctx context.Context, userID int64, role access.Role) ([]models.Group, error) {
	all, err := s.groups.List(ctx)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if role.HasElevatedAccess() {
		if all == nil {
			all = []models.Group{}
		}
		return all, nil
	}

	actor, err := s.checker.ActorFor(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	reachable := make(map[int64]bool, len(actor.GroupIDs))
	for _, id := range actor.GroupIDs {
		reachable[id] = true
	}

	visible := []models.Group{}
	for _, g := range all {
		if reachable[g.ID] {
			visible = append(visible, g)
		}
	}
	return visible, nil
}

// UpdateGroup renames a group and/or moves it under a new parent. Managing
// rights on the group are required; re-parenting also rejects cycles.
func (s *GroupService) UpdateGroup(ctx context.Context, userID int64, role access.Role, groupID int64, name *string, parentID *int64, clearParent bool) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if group == nil {
		return nil, NotFound("NOT_FOUND", "group not found")
	}

	if err := s.checker.RequireGroupAdmin(ctx, userID, role, groupID); err != nil {
		return nil, err
	}

	if name != nil {
		if len(*name) < 1 || len(*name) > 200 {
			return nil, BadRequest("INVALID_NAME", "group name must be 1-200 characters")
		}
		group.Name = *name
	}
	if clearParent {
		group.ParentID = nil
	} else if parentID != nil {
		cyclic, err := s.wouldCreateCycle(ctx, groupID, *parentID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, BadRequest("CYCLIC_PARENT", "cannot nest a group under its own descendant")
		}
		group.ParentID = parentID
	}

	if err := s.groups.Update(ctx, group); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToRoom(access.GroupRoom(groupID), gateway.EventGroupUpdate, group)
	s.gateway.DispatchToRoom(access.RoomAdmin, gateway.EventGroupUpdate, group)
	return group, nil
}

// wouldCreateCycle reports whether putting groupID under newParentID closes
// a loop in the nesting chain.
func (s *GroupService) wouldCreateCycle(ctx context.Context, groupID, newParentID int64) (bool, error) {
	if groupID == newParentID {
		return true, nil
	}
	all, err := s.groups.List(ctx)
	if err != nil {
		return false, Internal("INTERNAL", "internal server error")
	}
	parents := make(map[int64]*int64, len(all))
	found := false
	for _, g := range all {
		parents[g.ID] = g.ParentID
		if g.ID == newParentID {
			found = true
		}
	}
	if !found {
		return false, NotFound("NOT_FOUND", "parent group not found")
	}

	// Walk up from the new parent; hitting groupID means a cycle.
	seen := map[int64]bool{}
	for cur := &newParentID; cur != nil; cur = parents[*cur] {
		if *cur == groupID {
			return true, nil
		}
		if seen[*cur] {
			break
		}
		seen[*cur] = true
	}
	return false, nil
}

// DeleteGroup deletes a group along with its memberships and grants.
func (s *GroupService) DeleteGroup(ctx context.Context, userID int64, role access.Role, groupID int64) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if group == nil {
		return NotFound("NOT_FOUND", "group not found")
	}

	if err := s.checker.RequireGroupAdmin(ctx, userID, role, groupID); err != nil {
		return err
	}

	if err := s.groups.Delete(ctx, groupID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	data := map[string]string{"id": snowflake.ID(groupID).String()}
	s.gateway.DispatchToRoom(access.GroupRoom(groupID), gateway.EventGroupDelete, data)
	s.gateway.DispatchToRoom(access.RoomAdmin, gateway.EventGroupDelete, data)
	return nil
}

// AddMember adds a user to a group, optionally with the group admin flag.
func (s *GroupService) AddMember(ctx context.Context, actorID int64, role access.Role, groupID, targetUserID int64, isAdmin bool) (*models.GroupMember, error) {
	if err := s.checker.RequireGroupAdmin(ctx, actorID, role, groupID); err != nil {
		return nil, err
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if group == nil {
		return nil, NotFound("NOT_FOUND", "group not found")
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if target == nil {
		return nil, NotFound("NOT_FOUND", "user not found")
	}

	// The admin flag is only meaningful for elevated members.
	if isAdmin && !target.Role.HasElevatedAccess() {
		return nil, BadRequest("INVALID_ADMIN", "only teachers and admins can hold the group admin flag")
	}

	member := &models.GroupMember{
		GroupID:  groupID,
		UserID:   targetUserID,
		IsAdmin:  isAdmin,
		JoinedAt: time.Now(),
	}
	if err := s.groups.AddMember(ctx, member); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	// Route the member into the group's rooms, ancestors included, if
	// they hold a live connection.
	for _, roomID := range s.groupRoomChain(ctx, groupID) {
		s.gateway.JoinRoom(targetUserID, roomID)
	}

	s.gateway.DispatchToRoom(access.GroupRoom(groupID), gateway.EventGroupMemberAdd, member)
	return member, nil
}

// RemoveMember removes a user from a group.
func (s *GroupService) RemoveMember(ctx context.Context, actorID int64, role access.Role, groupID, targetUserID int64) error {
	if err := s.checker.RequireGroupAdmin(ctx, actorID, role, groupID); err != nil {
		return err
	}

	if err := s.groups.RemoveMember(ctx, groupID, targetUserID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	data := map[string]string{
		"group_id": snowflake.ID(groupID).String(),
		"user_id":  snowflake.ID(targetUserID).String(),
	}
	s.gateway.DispatchToRoom(access.GroupRoom(groupID), gateway.EventGroupMemberRemove, data)
	s.gateway.DispatchToUser(targetUserID, gateway.EventGroupMemberRemove, data)

	// Other memberships may still reach ancestor rooms, so only the
	// group's own room is safe to leave eagerly.
	s.gateway.LeaveRoom(targetUserID, access.GroupRoom(groupID))
	return nil
}

// SetMemberAdmin flips a membership's group admin flag. The flag never
// cascades to nested groups.
func (s *GroupService) SetMemberAdmin(ctx context.Context, actorID int64, role access.Role, groupID, targetUserID int64, isAdmin bool) error {
	if err := s.checker.RequireGroupAdmin(ctx, actorID, role, groupID); err != nil {
		return err
	}

	if isAdmin {
		target, err := s.users.GetByID(ctx, targetUserID)
		if err != nil {
			return Internal("INTERNAL", "internal server error")
		}
		if target == nil {
			return NotFound("NOT_FOUND", "user not found")
		}
		if !target.Role.HasElevatedAccess() {
			return BadRequest("INVALID_ADMIN", "only teachers and admins can hold the group admin flag")
		}
	}

	if err := s.groups.SetMemberAdmin(ctx, groupID, targetUserID, isAdmin); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToRoom(access.GroupRoom(groupID), gateway.EventGroupMemberUpdate, map[string]any{
		"group_id": snowflake.ID(groupID).String(),
		"user_id":  snowflake.ID(targetUserID).String(),
		"is_admin": isAdmin,
	})
	return nil
}

// GetMembers returns a group's memberships, with the same visibility rule as
// GetGroup.
func (s *GroupService) GetMembers(ctx context.Context, userID int64, role access.Role, groupID int64) ([]models.GroupMember, error) {
	if _, err := s.GetGroup(ctx, userID, role, groupID); err != nil {
		return nil, err
	}

	members, err := s.groups.GetMembers(ctx, groupID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if members == nil {
		members = []models.GroupMember{}
	}
	return members, nil
}

// groupRoomChain returns the room IDs for a group and all its ancestors.
func (s *GroupService) groupRoomChain(ctx context.Context, groupID int64) []string {
	all, err := s.groups.List(ctx)
	if err != nil {
		return []string{access.GroupRoom(groupID)}
	}
	parents := make(map[int64]*int64, len(all))
	for _, g := range all {
		parents[g.ID] = g.ParentID
	}

	var rooms []string
	seen := map[int64]bool{}
	for cur := &groupID; cur != nil && !seen[*cur]; cur = parents[*cur] {
		seen[*cur] = true
		rooms = append(rooms, access.GroupRoom(*cur))
	}
	return rooms
}
