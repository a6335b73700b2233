package gateway

import "encoding/json"

// Op codes for gateway payloads.
const (
	OpDispatch       = 0
	OpHeartbeat      = 1
	OpIdentify       = 2
	OpPresenceUpdate = 3
	OpResume         = 6
	OpReconnect      = 7
	OpHello          = 10
	OpHeartbeatAck   = 11
)

// Event names for DISPATCH payloads.
const (
	EventReady                = "READY"
	EventDocumentCreate       = "DOCUMENT_CREATE"
	EventDocumentUpdate       = "DOCUMENT_UPDATE"
	EventDocumentDelete       = "DOCUMENT_DELETE"
	EventDocumentRootCreate   = "DOCUMENT_ROOT_CREATE"
	EventDocumentRootUpdate   = "DOCUMENT_ROOT_UPDATE"
	EventDocumentRootDelete   = "DOCUMENT_ROOT_DELETE"
	EventPermissionUpdate     = "PERMISSION_UPDATE"
	EventGroupCreate          = "GROUP_CREATE"
	EventGroupUpdate          = "GROUP_UPDATE"
	EventGroupDelete          = "GROUP_DELETE"
	EventGroupMemberAdd       = "GROUP_MEMBER_ADD"
	EventGroupMemberRemove    = "GROUP_MEMBER_REMOVE"
	EventGroupMemberUpdate    = "GROUP_MEMBER_UPDATE"
	EventUserRoleUpdate       = "USER_ROLE_UPDATE"
	EventPresenceUpdate       = "PRESENCE_UPDATE"
)

// GatewayPayload is the envelope for all gateway messages.
type GatewayPayload struct {
	Op       int             `json:"op"`
	Data     json.RawMessage `json:"d,omitempty"`
	Sequence *int64          `json:"s,omitempty"`
	Event    *string         `json:"t,omitempty"`
}

// IdentifyData is sent by the client in an Op 2 IDENTIFY.
type IdentifyData struct {
	Token string `json:"token"`
}

// ResumeData is sent by the client in an Op 6 RESUME.
type ResumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Sequence  int64  `json:"seq"`
}

// HelloData is sent by the server after WebSocket connect.
type HelloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// ReadyData is sent by the server after successful IDENTIFY.
type ReadyData struct {
	SessionID string   `json:"session_id"`
	UserID    int64    `json:"user_id,string"`
	Rooms     []string `json:"rooms"`
}

// Event is a dispatch event ready to broadcast.
type Event struct {
	Name string
	Data any
}

// PresenceUpdateData is the payload for PRESENCE_UPDATE events.
type PresenceUpdateData struct {
	UserID int64  `json:"user_id,string"`
	Status string `json:"status"`
}

// ClientPresenceUpdate is sent by the client in an Op 3 PRESENCE_UPDATE.
type ClientPresenceUpdate struct {
	Status string `json:"status"`
}
