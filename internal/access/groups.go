package access

// GroupNode is the nesting-relevant slice of a group: its id and optional
// parent. The full group list of the tenant is small enough to materialize.
type GroupNode struct {
	ID       int64
	ParentID *int64
}

// Membership is one user↔group membership row, with the per-membership
// group-admin flag.
type Membership struct {
	GroupID int64
	IsAdmin bool
}

// ExpandGroupIDs returns the ids of all groups whose grants apply to a user
// with the given direct memberships: the member groups themselves plus every
// ancestor, since a grant on a parent group propagates to its sub-groups.
// Cycles in the parent chain are tolerated and terminate the walk.
func ExpandGroupIDs(memberships []Membership, groups []GroupNode) []int64 {
	parents := make(map[int64]*int64, len(groups))
	for _, g := range groups {
		parents[g.ID] = g.ParentID
	}

	seen := make(map[int64]bool)
	var out []int64
	for _, m := range memberships {
		id := m.GroupID
		for !seen[id] {
			seen[id] = true
			out = append(out, id)
			p, ok := parents[id]
			if !ok || p == nil {
				break
			}
			id = *p
		}
	}
	return out
}

// IsGroupAdmin reports whether the memberships carry the admin flag for the
// given group. Admin rights are evaluated per group id only; they never
// cascade through nesting.
func IsGroupAdmin(memberships []Membership, groupID int64) bool {
	for _, m := range memberships {
		if m.GroupID == groupID && m.IsAdmin {
			return true
		}
	}
	return false
}

// ManagedGroupIDs returns the ids of every group the actor may manage.
// Admins manage all groups; Teachers manage exactly the groups where their
// membership has the admin flag; Students manage none.
func ManagedGroupIDs(role Role, memberships []Membership, groups []GroupNode) []int64 {
	if role == RoleAdmin {
		ids := make([]int64, 0, len(groups))
		for _, g := range groups {
			ids = append(ids, g.ID)
		}
		return ids
	}
	if role != RoleTeacher {
		return nil
	}
	var ids []int64
	for _, m := range memberships {
		if m.IsAdmin {
			ids = append(ids, m.GroupID)
		}
	}
	return ids
}
