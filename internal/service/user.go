package service

import (
	"context"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/database"
	"github.com/ivopashov/classdocs/internal/gateway"
	"github.com/ivopashov/classdocs/internal/models"
	"github.com/ivopashov/classdocs/internal/snowflake"
)

// UserService handles user profile and role management.
type UserService struct {
	users   database.UserRepository
	gateway gateway.Dispatcher
}

// NewUserService creates a UserService.
func NewUserService(users database.UserRepository, gw gateway.Dispatcher) *UserService {
	return &UserService{users: users, gateway: gw}
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return nil, NotFound("NOT_FOUND", "user not found")
	}
	return user, nil
}

// ListUsers returns all users. Elevated actors only.
func (s *UserService) ListUsers(ctx context.Context, actorRole access.Role) ([]models.User, error) {
	if err := RequireElevated(actorRole); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// UpdateProfile updates a user's own display name.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, displayName string) (*models.User, error) {
	if len(displayName) < 1 || len(displayName) > 64 {
		return nil, BadRequest("INVALID_DISPLAY_NAME", "display name must be 1-64 characters")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return nil, NotFound("NOT_FOUND", "user not found")
	}

	user.DisplayName = displayName
	if err := s.users.Update(ctx, user); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return user, nil
}

// UpdateRole changes a user's role. The actor must strictly outrank both the
// target's current role and the new role, and may never change their own.
func (s *UserService) UpdateRole(ctx context.Context, actorID int64, actorRole access.Role, targetUserID int64, newRole access.Role) (*models.User, error) {
	if !newRole.Valid() {
		return nil, BadRequest("INVALID_ROLE", "role must be Student, Teacher, or Admin")
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if target == nil {
		return nil, NotFound("NOT_FOUND", "user not found")
	}

	if !access.CanChangeRole(actorRole, target.Role, newRole, actorID == targetUserID) {
		return nil, RoleHierarchyError("you cannot change this user to that role")
	}

	if err := s.users.UpdateRole(ctx, targetUserID, newRole); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	target.Role = newRole

	data := map[string]string{
		"user_id": snowflake.ID(targetUserID).String(),
		"role":    string(newRole),
	}
	s.gateway.DispatchToUser(targetUserID, gateway.EventUserRoleUpdate, data)
	s.gateway.DispatchToRoom(access.RoomAdmin, gateway.EventUserRoleUpdate, data)
	return target, nil
}

// DeleteUser removes a user. Admins only, and never themselves.
func (s *UserService) DeleteUser(ctx context.Context, actorID int64, actorRole access.Role, targetUserID int64) error {
	if actorRole != access.RoleAdmin {
		return Forbidden("MISSING_ACCESS", "only admins can delete users")
	}
	if actorID == targetUserID {
		return BadRequest("SELF_DELETE", "you cannot delete your own account")
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if target == nil {
		return NotFound("NOT_FOUND", "user not found")
	}

	if err := s.users.Delete(ctx, targetUserID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	return nil
}
