package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/models"
	"github.com/ivopashov/classdocs/internal/service"
)

func newTestUserHandler(users *mockUserRepo) (*UserHandler, *mockGateway) {
	gw := &mockGateway{}
	return NewUserHandler(service.NewUserService(users, gw)), gw
}

func usersByID(entries map[int64]*models.User) *mockUserRepo {
	return &mockUserRepo{
		GetByIDFn: func(_ context.Context, id int64) (*models.User, error) {
			return entries[id], nil
		},
	}
}

func TestUpdateRole_AdminPromotesStudent(t *testing.T) {
	users := usersByID(map[int64]*models.User{
		1000: {ID: 1000, Username: "student", Role: access.RoleStudent},
	})
	h, gw := newTestUserHandler(users)

	body := strings.NewReader(`{"role":"Teacher"}`)
	c, rec := newTestContext(http.MethodPatch, "/api/v1/users/1000/role", body)
	c.SetParamNames("id")
	c.SetParamValues("1000")
	setAuthUser(c, 3000, access.RoleAdmin)

	if err := h.UpdateRole(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	names := gw.eventNames()
	if len(names) != 2 {
		t.Fatalf("expected 2 dispatches (target + admin room), got %d", len(names))
	}
	for _, name := range names {
		if name != "USER_ROLE_UPDATE" {
			t.Errorf("expected USER_ROLE_UPDATE, got %s", name)
		}
	}
}

func TestUpdateRole_TeacherCannotPromoteToPeer(t *testing.T) {
	users := usersByID(map[int64]*models.User{
		1000: {ID: 1000, Username: "student", Role: access.RoleStudent},
	})
	h, _ := newTestUserHandler(users)

	// A Teacher outranks the Student but not the Teacher role itself.
	body := strings.NewReader(`{"role":"Teacher"}`)
	c, rec := newTestContext(http.MethodPatch, "/api/v1/users/1000/role", body)
	c.SetParamNames("id")
	c.SetParamValues("1000")
	setAuthUser(c, 2000, access.RoleTeacher)

	if err := h.UpdateRole(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d: %s", http.StatusForbidden, rec.Code, rec.Body.String())
	}
}

func TestUpdateRole_SelfChangeRejected(t *testing.T) {
	users := usersByID(map[int64]*models.User{
		3000: {ID: 3000, Username: "admin", Role: access.RoleAdmin},
	})
	h, _ := newTestUserHandler(users)

	body := strings.NewReader(`{"role":"Student"}`)
	c, rec := newTestContext(http.MethodPatch, "/api/v1/users/3000/role", body)
	c.SetParamNames("id")
	c.SetParamValues("3000")
	setAuthUser(c, 3000, access.RoleAdmin)

	if err := h.UpdateRole(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d: %s", http.StatusForbidden, rec.Code, rec.Body.String())
	}
}

func TestUpdateRole_InvalidRoleRejected(t *testing.T) {
	h, _ := newTestUserHandler(&mockUserRepo{})

	body := strings.NewReader(`{"role":"Owner"}`)
	c, rec := newTestContext(http.MethodPatch, "/api/v1/users/1000/role", body)
	c.SetParamNames("id")
	c.SetParamValues("1000")
	setAuthUser(c, 3000, access.RoleAdmin)

	if err := h.UpdateRole(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestDeleteUser_SelfRejected(t *testing.T) {
	h, _ := newTestUserHandler(&mockUserRepo{})

	c, rec := newTestContext(http.MethodDelete, "/api/v1/users/3000", nil)
	c.SetParamNames("id")
	c.SetParamValues("3000")
	setAuthUser(c, 3000, access.RoleAdmin)

	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestDeleteUser_TeacherForbidden(t *testing.T) {
	h, _ := newTestUserHandler(&mockUserRepo{})

	c, rec := newTestContext(http.MethodDelete, "/api/v1/users/1000", nil)
	c.SetParamNames("id")
	c.SetParamValues("1000")
	setAuthUser(c, 2000, access.RoleTeacher)

	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d: %s", http.StatusForbidden, rec.Code, rec.Body.String())
	}
}

func TestListUsers_StudentForbidden(t *testing.T) {
	h, _ := newTestUserHandler(&mockUserRepo{})

	c, rec := newTestContext(http.MethodGet, "/api/v1/users", nil)
	setAuthUser(c, 1000, access.RoleStudent)

	if err := h.ListUsers(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d: %s", http.StatusForbidden, rec.Code, rec.Body.String())
	}
}
