package gateway

import "github.com/ivopashov/classdocs/internal/access"

// Dispatcher is the interface used by services to push events to connected
// WebSocket clients. The concrete Manager implements this interface.
type Dispatcher interface {
	DispatchToRoom(roomID string, event string, data interface{})
	DispatchToUser(userID int64, event string, data interface{})
	DispatchToAudience(audience access.Audience, event string, data interface{})
	JoinRoom(userID int64, roomID string)
	LeaveRoom(userID int64, roomID string)
}
