package access

// Role is a user's global role. Roles form a total order used for every
// administrative gate in the system.
type Role string

const (
	RoleStudent Role = "Student"
	RoleTeacher Role = "Teacher"
	RoleAdmin   Role = "Admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Rank returns the role's position in the hierarchy, strictly increasing
// with authorization power: Student=0, Teacher=1, Admin=2.
func (r Role) Rank() int {
	switch r {
	case RoleTeacher:
		return 1
	case RoleAdmin:
		return 2
	}
	return 0
}

// HasElevatedAccess reports whether the role may use administrative surfaces
// (template management, signup tokens, root permission management).
func (r Role) HasElevatedAccess() bool {
	return r.Rank() > 0
}

// CanChangeRole reports whether an actor may reassign a target's role.
// The actor must outrank both the target's current role and the new role,
// and may never change their own role downward or otherwise.
func CanChangeRole(actor, current, next Role, isSelf bool) bool {
	if isSelf {
		return false
	}
	return current.Rank() < actor.Rank() && next.Rank() < actor.Rank()
}
