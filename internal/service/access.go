package service

import (
	"context"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/database"
	"github.com/ivopashov/classdocs/internal/models"
)

// AccessChecker resolves effective access levels and notification audiences
// for document roots. All root-level authorization goes through here.
type AccessChecker struct {
	roots  database.DocumentRootRepository
	perms  database.PermissionRepository
	groups database.GroupRepository
}

// NewAccessChecker creates an AccessChecker.
func NewAccessChecker(
	roots database.DocumentRootRepository,
	perms database.PermissionRepository,
	groups database.GroupRepository,
) *AccessChecker {
	return &AccessChecker{
		roots:  roots,
		perms:  perms,
		groups: groups,
	}
}

// LoadRootSnapshot loads a root's shared access and all its grants in one
// value. Returns nil if the root does not exist.
func (a *AccessChecker) LoadRootSnapshot(ctx context.Context, rootID int64) (*access.RootSnapshot, error) {
	root, err := a.roots.GetByID(ctx, rootID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if root == nil {
		return nil, nil
	}

	userPerms, err := a.perms.GetUserPermissions(ctx, rootID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	groupPerms, err := a.perms.GetGroupPermissions(ctx, rootID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	snap := &access.RootSnapshot{
		RootID:       rootID,
		SharedAccess: root.SharedAccess,
	}
	for _, p := range userPerms {
		snap.UserGrants = append(snap.UserGrants, access.UserGrant{UserID: p.UserID, Access: p.Access})
	}
	for _, p := range groupPerms {
		snap.GroupGrants = append(snap.GroupGrants, access.GroupGrant{GroupID: p.GroupID, Access: p.Access})
	}
	return snap, nil
}

// ActorFor builds the access.Actor for a user, with group memberships
// expanded through ancestor groups.
func (a *AccessChecker) ActorFor(ctx context.Context, userID int64, role access.Role) (access.Actor, error) {
	actor := access.Actor{ID: userID, Role: role}

	memberships, err := a.groups.GetMembershipsByUser(ctx, userID)
	if err != nil {
		return actor, Internal("INTERNAL", "internal server error")
	}
	if len(memberships) == 0 {
		return actor, nil
	}

	allGroups, err := a.groups.List(ctx)
	if err != nil {
		return actor, Internal("INTERNAL", "internal server error")
	}

	actor.GroupIDs = access.ExpandGroupIDs(toMemberships(memberships), toGroupNodes(allGroups))
	return actor, nil
}

// EffectiveRootAccess resolves a user's effective level on a root. Admins
// bypass resolution and always get RW. Returns None if the root does not
// exist.
func (a *AccessChecker) EffectiveRootAccess(ctx context.Context, userID int64, role access.Role, rootID int64) (access.Level, error) {
	if role == access.RoleAdmin {
		root, err := a.roots.GetByID(ctx, rootID)
		if err != nil {
			return access.LevelNone, Internal("INTERNAL", "internal server error")
		}
		if root == nil {
			return access.LevelNone, nil
		}
		return access.LevelRW, nil
	}

	snap, err := a.LoadRootSnapshot(ctx, rootID)
	if err != nil {
		return access.LevelNone, err
	}
	if snap == nil {
		return access.LevelNone, nil
	}

	actor, err := a.ActorFor(ctx, userID, role)
	if err != nil {
		return access.LevelNone, err
	}
	return access.EffectiveAccess(actor, *snap), nil
}

// RequireRootAccess checks that the user holds at least min on the root and
// returns it. A root the user cannot see at all reports not found, the same
// as a root that does not exist; forbidden is reserved for actors who can
// see the root but hold too low a level.
func (a *AccessChecker) RequireRootAccess(ctx context.Context, userID int64, role access.Role, rootID int64, min access.Level) (*models.DocumentRoot, error) {
	root, err := a.roots.GetByID(ctx, rootID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if root == nil {
		return nil, NotFound("NOT_FOUND", "document root not found")
	}

	level, err := a.EffectiveRootAccess(ctx, userID, role, rootID)
	if err != nil {
		return nil, err
	}
	if level.AtLeast(min) {
		return root, nil
	}
	if level == access.LevelNone && !role.HasElevatedAccess() {
		return nil, NotFound("NOT_FOUND", "document root not found")
	}
	return nil, Forbidden("MISSING_ACCESS", "you do not have the required access level")
}

// AudienceForRoot computes the notification audience for a change on a root.
func (a *AccessChecker) AudienceForRoot(ctx context.Context, rootID, actingUserID int64) (access.Audience, error) {
	snap, err := a.LoadRootSnapshot(ctx, rootID)
	if err != nil {
		return access.Audience{}, err
	}
	if snap == nil {
		return access.Audience{}, NotFound("NOT_FOUND", "document root not found")
	}
	return access.AudienceFor(*snap, actingUserID), nil
}

// RequireGroupAdmin checks that the user may manage the given group. Admins
// manage every group; Teachers manage groups where their membership carries
// the admin flag. The flag does not cascade to nested groups.
func (a *AccessChecker) RequireGroupAdmin(ctx context.Context, userID int64, role access.Role, groupID int64) error {
	if role == access.RoleAdmin {
		return nil
	}
	if role != access.RoleTeacher {
		return Forbidden("MISSING_ACCESS", "you do not have permission to manage this group")
	}

	memberships, err := a.groups.GetMembershipsByUser(ctx, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if !access.IsGroupAdmin(toMemberships(memberships), groupID) {
		return Forbidden("MISSING_ACCESS", "you do not have permission to manage this group")
	}
	return nil
}

// RequireElevated checks that the role is Teacher or Admin.
func RequireElevated(role access.Role) error {
	if !role.HasElevatedAccess() {
		return Forbidden("MISSING_ACCESS", "elevated access required")
	}
	return nil
}

func toMemberships(members []models.GroupMember) []access.Membership {
	ms := make([]access.Membership, len(members))
	for i, m := range members {
		ms[i] = access.Membership{GroupID: m.GroupID, IsAdmin: m.IsAdmin}
	}
	return ms
}

func toGroupNodes(groups []models.Group) []access.GroupNode {
	nodes := make([]access.GroupNode, len(groups))
	for i, g := range groups {
		nodes[i] = access.GroupNode{ID: g.ID, ParentID: g.ParentID}
	}
	return nodes
}
