package database

import (
	"context"
	"testing"
	"time"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/models"
)

func TestUserRepo_Create(t *testing.T) {
	pool := testPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := &models.User{
		ID:           nextID(),
		Username:     "testuser_create",
		DisplayName:  "Test User",
		Role:         access.RoleStudent,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$abc$def",
		CreatedAt:    time.Now().Truncate(time.Microsecond),
	}

	err := repo.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, user.ID) })

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID after Create: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil after Create")
	}
	if got.Username != user.Username {
		t.Errorf("Username = %q, want %q", got.Username, user.Username)
	}
	if got.Role != access.RoleStudent {
		t.Errorf("Role = %q, want %q", got.Role, access.RoleStudent)
	}
}

func TestUserRepo_Create_DuplicateUsername(t *testing.T) {
	pool := testPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user1 := &models.User{
		ID:           nextID(),
		Username:     "testuser_dup",
		DisplayName:  "Test User 1",
		Role:         access.RoleStudent,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$abc$def",
		CreatedAt:    time.Now().Truncate(time.Microsecond),
	}
	user2 := &models.User{
		ID:           nextID(),
		Username:     "testuser_dup",
		DisplayName:  "Test User 2",
		Role:         access.RoleStudent,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$abc$def",
		CreatedAt:    time.Now().Truncate(time.Microsecond),
	}

	if err := repo.Create(ctx, user1); err != nil {
		t.Fatalf("Create user1: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, user1.ID) })

	err := repo.Create(ctx, user2)
	if err == nil {
		t.Cleanup(func() { _ = repo.Delete(ctx, user2.ID) })
		t.Fatal("expected error for duplicate username, got nil")
	}
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	pool := testPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 999999999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for nonexistent ID, got %+v", got)
	}
}

func TestUserRepo_UpdateRole(t *testing.T) {
	pool := testPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := &models.User{
		ID:           nextID(),
		Username:     "testuser_role",
		DisplayName:  "Role User",
		Role:         access.RoleStudent,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$abc$def",
		CreatedAt:    time.Now().Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, user.ID) })

	if err := repo.UpdateRole(ctx, user.ID, access.RoleTeacher); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != access.RoleTeacher {
		t.Errorf("Role = %q, want %q", got.Role, access.RoleTeacher)
	}
}
