package access

import "testing"

func containsRoom(rooms []string, room string) bool {
	for _, r := range rooms {
		if r == room {
			return true
		}
	}
	return false
}

func containsUser(users []int64, id int64) bool {
	for _, u := range users {
		if u == id {
			return true
		}
	}
	return false
}

func TestAudienceFor_SharedRWReachesEveryone(t *testing.T) {
	snap := RootSnapshot{SharedAccess: LevelRW}
	aud := AudienceFor(snap, 42)

	if !containsUser(aud.UserIDs, 42) {
		t.Error("acting user must be included")
	}
	if !containsRoom(aud.RoomIDs, RoomAll) {
		t.Error("shared RW root must notify the all-users room")
	}
	if !containsRoom(aud.RoomIDs, RoomAdmin) {
		t.Error("admin room is always included")
	}
}

func TestAudienceFor_RestrictedRootStillReachesAdmins(t *testing.T) {
	snap := RootSnapshot{SharedAccess: LevelNone}
	aud := AudienceFor(snap, 1)

	if containsRoom(aud.RoomIDs, RoomAll) {
		t.Error("shared None must not notify the all-users room")
	}
	if !containsRoom(aud.RoomIDs, RoomAdmin) {
		t.Error("admins observe all mutations")
	}
}

func TestAudienceFor_GrantedUsersAndGroups(t *testing.T) {
	snap := RootSnapshot{
		SharedAccess: LevelNone,
		UserGrants: []UserGrant{
			{UserID: 5, Access: LevelRO},
			{UserID: 6, Access: LevelRW},
		},
		GroupGrants: []GroupGrant{{GroupID: 9, Access: LevelRO}},
	}
	aud := AudienceFor(snap, 1)

	if !containsUser(aud.UserIDs, 5) || !containsUser(aud.UserIDs, 6) {
		t.Error("users with grants must be notified")
	}
	if !containsRoom(aud.RoomIDs, GroupRoom(9)) {
		t.Error("groups with grants are addressed by their room")
	}
}

func TestAudienceFor_ExplicitNoneExcluded(t *testing.T) {
	snap := RootSnapshot{
		SharedAccess: LevelNone,
		UserGrants:   []UserGrant{{UserID: 5, Access: LevelNone}},
		GroupGrants:  []GroupGrant{{GroupID: 9, Access: LevelNone}},
	}
	aud := AudienceFor(snap, 1)

	if containsUser(aud.UserIDs, 5) {
		t.Error("a user with an explicit None override must not be in the audience")
	}
	if containsRoom(aud.RoomIDs, GroupRoom(9)) {
		t.Error("a group with an explicit None override must not be in the audience")
	}
}

func TestAudienceFor_SharedRO(t *testing.T) {
	snap := RootSnapshot{SharedAccess: LevelRO}
	aud := AudienceFor(snap, 3)
	if !containsRoom(aud.RoomIDs, RoomAll) {
		t.Error("shared RO is broad visibility and must reach the all-users room")
	}
}

func TestRoomIdentifiers(t *testing.T) {
	if UserRoom(12) != "user:12" {
		t.Errorf("unexpected user room %s", UserRoom(12))
	}
	if GroupRoom(7) != "group:7" {
		t.Errorf("unexpected group room %s", GroupRoom(7))
	}
}
