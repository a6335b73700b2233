package access

import "strconv"

// Well-known room identifiers in the realtime transport. User ids and group
// ids double as rooms via UserRoom and GroupRoom.
const (
	RoomAll   = "all"
	RoomAdmin = "admin"
)

// UserRoom returns the private room id for a user.
func UserRoom(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// GroupRoom returns the room id for a group.
func GroupRoom(groupID int64) string {
	return "group:" + strconv.FormatInt(groupID, 10)
}

// Audience is the distribution list for one mutation notification.
// De-duplication across users and rooms is the transport's job.
type Audience struct {
	UserIDs []int64
	RoomIDs []string
}

// AudienceFor computes who must be notified about a mutation under the given
// root. Applied uniformly to document and document-root mutations; documents
// carry no permissions of their own, so callers pass the owning root's
// snapshot.
//
//   - the acting user always hears the echo on their other sessions
//   - every user and group with a grant other than an explicit None
//   - the "all" room when the root is shared RO or RW
//   - the "admin" room always, so restricted changes still reach oversight
func AudienceFor(snap RootSnapshot, actingUserID int64) Audience {
	aud := Audience{
		UserIDs: []int64{actingUserID},
		RoomIDs: []string{RoomAdmin},
	}

	for _, g := range snap.UserGrants {
		if g.Access != LevelNone {
			aud.UserIDs = append(aud.UserIDs, g.UserID)
		}
	}
	for _, g := range snap.GroupGrants {
		if g.Access != LevelNone {
			aud.RoomIDs = append(aud.RoomIDs, GroupRoom(g.GroupID))
		}
	}
	if snap.SharedAccess != LevelNone {
		aud.RoomIDs = append(aud.RoomIDs, RoomAll)
	}
	return aud
}
