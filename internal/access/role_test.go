package access

import "testing"

func TestRoleRank(t *testing.T) {
	if RoleStudent.Rank() != 0 || RoleTeacher.Rank() != 1 || RoleAdmin.Rank() != 2 {
		t.Errorf("unexpected ranks: %d %d %d", RoleStudent.Rank(), RoleTeacher.Rank(), RoleAdmin.Rank())
	}
}

func TestHasElevatedAccess(t *testing.T) {
	if RoleStudent.HasElevatedAccess() {
		t.Error("Student must not be elevated")
	}
	if !RoleTeacher.HasElevatedAccess() {
		t.Error("Teacher should be elevated")
	}
	if !RoleAdmin.HasElevatedAccess() {
		t.Error("Admin should be elevated")
	}
}

func TestCanChangeRole_AdminDemotesTeacher(t *testing.T) {
	if !CanChangeRole(RoleAdmin, RoleTeacher, RoleStudent, false) {
		t.Error("Admin should be able to demote a Teacher to Student")
	}
}

func TestCanChangeRole_TeacherCannotEscalateToAdmin(t *testing.T) {
	if CanChangeRole(RoleTeacher, RoleStudent, RoleAdmin, false) {
		t.Error("Teacher must not assign Admin")
	}
}

func TestCanChangeRole_NoLateralTampering(t *testing.T) {
	// The target's current role must be strictly below the actor's.
	if CanChangeRole(RoleTeacher, RoleTeacher, RoleStudent, false) {
		t.Error("Teacher must not modify another Teacher")
	}
	if CanChangeRole(RoleAdmin, RoleAdmin, RoleStudent, false) {
		t.Error("Admin must not modify another Admin")
	}
}

func TestCanChangeRole_NeverSelf(t *testing.T) {
	if CanChangeRole(RoleAdmin, RoleAdmin, RoleStudent, true) {
		t.Error("an actor must never lower their own role")
	}
	if CanChangeRole(RoleAdmin, RoleAdmin, RoleAdmin, true) {
		t.Error("self role changes are always rejected")
	}
}

func TestCanChangeRole_NewRoleBelowActor(t *testing.T) {
	if CanChangeRole(RoleTeacher, RoleStudent, RoleTeacher, false) {
		t.Error("new role must be strictly below the actor's level")
	}
	if !CanChangeRole(RoleAdmin, RoleStudent, RoleTeacher, false) {
		t.Error("Admin should be able to promote a Student to Teacher")
	}
}
