package access

// Actor is the authenticated principal a resolution runs for. GroupIDs must
// already be expanded through group nesting (see ExpandGroupIDs); the resolver
// itself does not walk the hierarchy.
type Actor struct {
	ID       int64
	Role     Role
	GroupIDs []int64
}

// UserGrant is one direct user permission row on a root.
type UserGrant struct {
	UserID int64
	Access Level
}

// GroupGrant is one group permission row on a root.
type GroupGrant struct {
	GroupID int64
	Access  Level
}

// RootSnapshot is the full permission state of one document root, fully
// materialized before resolution. Resolvers never fetch; callers re-fetch
// before each decision.
type RootSnapshot struct {
	RootID       int64
	SharedAccess Level
	UserGrants   []UserGrant
	GroupGrants  []GroupGrant
}

// EffectiveAccess computes the actor's effective level on a root.
//  1. Collect the actor's direct grant, if any.
//  2. Collect grants of every group the actor belongs to.
//  3. Combine all collected grants with HighestUserAccess.
//  4. With no grant at all, fall back to the root's shared access.
//
// A specific grant always takes precedence over the shared default: the
// shared access never restricts a combined grant. "No access" is the value
// LevelNone, never an error.
func EffectiveAccess(actor Actor, snap RootSnapshot) Level {
	inGroups := make(map[int64]bool, len(actor.GroupIDs))
	for _, id := range actor.GroupIDs {
		inGroups[id] = true
	}

	var grants []Level
	for _, g := range snap.UserGrants {
		if g.UserID == actor.ID {
			grants = append(grants, g.Access)
		}
	}
	for _, g := range snap.GroupGrants {
		if inGroups[g.GroupID] {
			grants = append(grants, g.Access)
		}
	}

	if len(grants) == 0 {
		return snap.SharedAccess
	}
	return HighestUserAccess(grants)
}
