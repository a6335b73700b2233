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

func newTestGroupHandler(groups *mockGroupRepo, users *mockUserRepo) (*GroupHandler, *mockGateway) {
	gw := &mockGateway{}
	checker := service.NewAccessChecker(&mockRootRepo{}, &mockPermissionRepo{}, groups)
	svc := service.NewGroupService(groups, users, testSnowflake(), gw, checker)
	return NewGroupHandler(svc), gw
}

func groupTree() *mockGroupRepo {
	parent := int64(10)
	groups := []models.Group{
		{ID: 10, Name: "Year 9"},
		{ID: 11, Name: "Year 9 Science", ParentID: &parent},
	}
	return &mockGroupRepo{
		GetByIDFn: func(_ context.Context, id int64) (*models.Group, error) {
			for i := range groups {
				if groups[i].ID == id {
					return &groups[i], nil
				}
			}
			return nil, nil
		},
		ListFn: func(_ context.Context) ([]models.Group, error) {
			return groups, nil
		},
	}
}

func TestGetGroup_HiddenFromNonMember(t *testing.T) {
	h, _ := newTestGroupHandler(groupTree(), &mockUserRepo{})

	c, rec := newTestContext(http.MethodGet, "/api/v1/groups/10", nil)
	c.SetParamNames("id")
	c.SetParamValues("10")
	setAuthUser(c, 1000, access.RoleStudent)

	if err := h.GetGroup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNotFound, rec.Code, rec.Body.String())
	}
}

func TestGetGroup_NestedMemberSeesAncestor(t *testing.T) {
	groups := groupTree()
	groups.GetMembershipsByUserFn = func(_ context.Context, userID int64) ([]models.GroupMember, error) {
		if userID == 1000 {
			return []models.GroupMember{{GroupID: 11, UserID: 1000}}, nil
		}
		return nil, nil
	}
	h, _ := newTestGroupHandler(groups, &mockUserRepo{})

	// Membership in the nested group reaches the ancestor.
	c, rec := newTestContext(http.MethodGet, "/api/v1/groups/10", nil)
	c.SetParamNames("id")
	c.SetParamValues("10")
	setAuthUser(c, 1000, access.RoleStudent)

	if err := h.GetGroup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestUpdateGroup_RejectsCycle(t *testing.T) {
	h, _ := newTestGroupHandler(groupTree(), &mockUserRepo{})

	// Re-parenting Year 9 under its own child closes a loop.
	body := strings.NewReader(`{"parent_id":"11"}`)
	c, rec := newTestContext(http.MethodPatch, "/api/v1/groups/10", body)
	c.SetParamNames("id")
	c.SetParamValues("10")
	setAuthUser(c, 3000, access.RoleAdmin)

	if err := h.UpdateGroup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestUpdateGroup_TeacherNeedsAdminFlag(t *testing.T) {
	groups := groupTree()
	groups.GetMembershipsByUserFn = func(_ context.Context, userID int64) ([]models.GroupMember, error) {
		// Member of the group, but without the admin flag.
		return []models.GroupMember{{GroupID: 10, UserID: userID}}, nil
	}
	h, _ := newTestGroupHandler(groups, &mockUserRepo{})

	body := strings.NewReader(`{"name":"Renamed"}`)
	c, rec := newTestContext(http.MethodPatch, "/api/v1/groups/10", body)
	c.SetParamNames("id")
	c.SetParamValues("10")
	setAuthUser(c, 2000, access.RoleTeacher)

	if err := h.UpdateGroup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d: %s", http.StatusForbidden, rec.Code, rec.Body.String())
	}
}

func TestUpdateGroup_GroupAdminTeacherAllowed(t *testing.T) {
	groups := groupTree()
	groups.GetMembershipsByUserFn = func(_ context.Context, userID int64) ([]models.GroupMember, error) {
		return []models.GroupMember{{GroupID: 10, UserID: userID, IsAdmin: true}}, nil
	}
	h, _ := newTestGroupHandler(groups, &mockUserRepo{})

	body := strings.NewReader(`{"name":"Renamed"}`)
	c, rec := newTestContext(http.MethodPatch, "/api/v1/groups/10", body)
	c.SetParamNames("id")
	c.SetParamValues("10")
	setAuthUser(c, 2000, access.RoleTeacher)

	if err := h.UpdateGroup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestAddMember_AdminFlagRequiresElevatedTarget(t *testing.T) {
	users := usersByID(map[int64]*models.User{
		1000: {ID: 1000, Username: "student", Role: access.RoleStudent},
	})
	h, _ := newTestGroupHandler(groupTree(), users)

	body := strings.NewReader(`{"is_admin":true}`)
	c, rec := newTestContext(http.MethodPut, "/api/v1/groups/10/members/1000", body)
	c.SetParamNames("id", "user_id")
	c.SetParamValues("10", "1000")
	setAuthUser(c, 3000, access.RoleAdmin)

	if err := h.AddMember(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestAddMember_JoinsRoomChain(t *testing.T) {
	users := usersByID(map[int64]*models.User{
		1000: {ID: 1000, Username: "student", Role: access.RoleStudent},
	})
	h, gw := newTestGroupHandler(groupTree(), users)

	body := strings.NewReader(`{"is_admin":false}`)
	c, rec := newTestContext(http.MethodPut, "/api/v1/groups/11/members/1000", body)
	c.SetParamNames("id", "user_id")
	c.SetParamValues("11", "1000")
	setAuthUser(c, 3000, access.RoleAdmin)

	if err := h.AddMember(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	// The nested group's room and the ancestor's room must both be joined.
	gw.mu.Lock()
	joins := append([]string(nil), gw.joins...)
	gw.mu.Unlock()
	want := map[string]bool{"group:11": false, "group:10": false}
	for _, room := range joins {
		if _, ok := want[room]; ok {
			want[room] = true
		}
	}
	for room, hit := range want {
		if !hit {
			t.Errorf("expected a join for room %s, joins were %v", room, joins)
		}
	}
}

func TestRemoveMember_LeavesOwnRoomOnly(t *testing.T) {
	h, gw := newTestGroupHandler(groupTree(), &mockUserRepo{})

	c, rec := newTestContext(http.MethodDelete, "/api/v1/groups/11/members/1000", nil)
	c.SetParamNames("id", "user_id")
	c.SetParamValues("11", "1000")
	setAuthUser(c, 3000, access.RoleAdmin)

	if err := h.RemoveMember(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNoContent, rec.Code, rec.Body.String())
	}

	gw.mu.Lock()
	leaves := append([]string(nil), gw.leaves...)
	gw.mu.Unlock()
	if len(leaves) != 1 || leaves[0] != "group:11" {
		t.Errorf("expected to leave exactly group:11, got %v", leaves)
	}
}

func TestCreateGroup_TeacherBecomesGroupAdmin(t *testing.T) {
	var added *models.GroupMember
	groups := &mockGroupRepo{
		AddMemberFn: func(_ context.Context, member *models.GroupMember) error {
			added = member
			return nil
		},
	}
	h, gw := newTestGroupHandler(groups, &mockUserRepo{})

	body := strings.NewReader(`{"name":"Year 10"}`)
	c, rec := newTestContext(http.MethodPost, "/api/v1/groups", body)
	setAuthUser(c, 2000, access.RoleTeacher)

	if err := h.CreateGroup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if added == nil || added.UserID != 2000 || !added.IsAdmin {
		t.Fatalf("expected creator added as group admin, got %+v", added)
	}
	if len(gw.joins) == 0 {
		t.Error("expected creator to join the new group's room")
	}
}

func TestCreateGroup_AdminGetsNoMembership(t *testing.T) {
	groups := &mockGroupRepo{
		AddMemberFn: func(_ context.Context, member *models.GroupMember) error {
			t.Errorf("unexpected AddMember call: %+v", member)
			return nil
		},
	}
	h, _ := newTestGroupHandler(groups, &mockUserRepo{})

	body := strings.NewReader(`{"name":"Staff"}`)
	c, rec := newTestContext(http.MethodPost, "/api/v1/groups", body)
	setAuthUser(c, 3000, access.RoleAdmin)

	if err := h.CreateGroup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
}

func TestCreateGroup_StudentForbidden(t *testing.T) {
	h, _ := newTestGroupHandler(&mockGroupRepo{}, &mockUserRepo{})

	body := strings.NewReader(`{"name":"My Group"}`)
	c, rec := newTestContext(http.MethodPost, "/api/v1/groups", body)
	setAuthUser(c, 1000, access.RoleStudent)

	if err := h.CreateGroup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d: %s", http.StatusForbidden, rec.Code, rec.Body.String())
	}
}
