package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/auth"
	"github.com/ivopashov/classdocs/internal/database"
	"github.com/ivopashov/classdocs/internal/redis"
)

const (
	replayBufferSize = 100
)

// Manager manages all active WebSocket connections and room-based event
// routing. Rooms are string-keyed: per-user, per-group, the shared room, and
// the admin room.
type Manager struct {
	mu          sync.RWMutex
	connections map[int64]*Connection      // userID → connection
	rooms       map[string]map[int64]bool  // roomID → set of userIDs
	sessions    map[string]*Connection     // sessionID → connection

	// Ring buffer per room for session resume replay.
	replayMu     sync.RWMutex
	replayBuffer map[string]*ringBuffer // roomID → ring buffer of events

	tokens *auth.TokenService
	groups database.GroupRepository
	redis  *redis.Client
}

// NewManager creates a new gateway Manager.
func NewManager(
	tokens *auth.TokenService,
	groups database.GroupRepository,
	redisClient *redis.Client,
) *Manager {
	return &Manager{
		connections:  make(map[int64]*Connection),
		rooms:        make(map[string]map[int64]bool),
		sessions:     make(map[string]*Connection),
		replayBuffer: make(map[string]*ringBuffer),
		tokens:       tokens,
		groups:       groups,
		redis:        redisClient,
	}
}

// register adds a connection to the manager.
func (m *Manager) register(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Disconnect existing connection for this user.
	if old, ok := m.connections[c.UserID]; ok {
		old.SendPayload(GatewayPayload{Op: OpReconnect})
		old.Close()
		delete(m.sessions, old.SessionID)
	}

	m.connections[c.UserID] = c
	m.sessions[c.SessionID] = c
}

// unregister removes a connection from the manager and cleans up room
// memberships.
func (m *Manager) unregister(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.connections[c.UserID]; ok && existing == c {
		delete(m.connections, c.UserID)

		for roomID, members := range m.rooms {
			delete(members, c.UserID)
			if len(members) == 0 {
				delete(m.rooms, roomID)
			}
		}

		// Clear presence with grace period.
		go m.clearPresenceWithGrace(c.UserID)
	}

	delete(m.sessions, c.SessionID)
}

// clearPresenceWithGrace waits before setting offline, allowing reconnection.
func (m *Manager) clearPresenceWithGrace(userID int64) {
	time.Sleep(10 * time.Second)

	m.mu.RLock()
	_, stillConnected := m.connections[userID]
	m.mu.RUnlock()

	if stillConnected {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.redis.SetPresence(ctx, userID, "offline"); err != nil {
		slog.Error("failed to clear presence", "userID", userID, "error", err)
	}

	m.broadcastPresence(userID, "offline")
}

// join adds a user to a room.
func (m *Manager) join(userID int64, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rooms[roomID] == nil {
		m.rooms[roomID] = make(map[int64]bool)
	}
	m.rooms[roomID][userID] = true
}

// JoinRoom adds a user to a room's event routing.
func (m *Manager) JoinRoom(userID int64, roomID string) {
	m.join(userID, roomID)
}

// LeaveRoom removes a user from a room's event routing.
func (m *Manager) LeaveRoom(userID int64, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if members, ok := m.rooms[roomID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(m.rooms, roomID)
		}
	}
}

// DispatchToUser sends a dispatch event to a specific connected user.
func (m *Manager) DispatchToUser(userID int64, event string, data interface{}) {
	m.mu.RLock()
	c, ok := m.connections[userID]
	m.mu.RUnlock()

	if ok {
		c.SendEvent(event, data)
	}
}

// DispatchToRoom sends a dispatch event to all users in a room.
func (m *Manager) DispatchToRoom(roomID string, event string, data interface{}) {
	m.mu.RLock()
	members := m.rooms[roomID]
	conns := make([]*Connection, 0, len(members))
	for userID := range members {
		if c, ok := m.connections[userID]; ok {
			conns = append(conns, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.SendEvent(event, data)
	}

	m.storeReplayEvent(roomID, Event{Name: event, Data: data})
}

// DispatchToAudience sends a dispatch event once per connection across the
// audience's direct user targets and rooms. A user reachable through several
// rooms still receives the event once.
func (m *Manager) DispatchToAudience(audience access.Audience, event string, data interface{}) {
	m.mu.RLock()
	targets := make(map[int64]*Connection)
	for _, userID := range audience.UserIDs {
		if c, ok := m.connections[userID]; ok {
			targets[userID] = c
		}
	}
	for _, roomID := range audience.RoomIDs {
		for userID := range m.rooms[roomID] {
			if c, ok := m.connections[userID]; ok {
				targets[userID] = c
			}
		}
	}
	m.mu.RUnlock()

	for _, c := range targets {
		c.SendEvent(event, data)
	}

	for _, roomID := range audience.RoomIDs {
		m.storeReplayEvent(roomID, Event{Name: event, Data: data})
	}
}

// sendToRoomInternal sends an Event to all room members (internal use).
func (m *Manager) sendToRoomInternal(roomID string, event Event) {
	m.mu.RLock()
	members := m.rooms[roomID]
	conns := make([]*Connection, 0, len(members))
	for userID := range members {
		if c, ok := m.connections[userID]; ok {
			conns = append(conns, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.SendEvent(event.Name, event.Data)
	}

	m.storeReplayEvent(roomID, event)
}

// roomsForUser computes the rooms a user belongs to from stored facts: the
// user's own room, the shared room, the admin room for Admins, and one room
// per group membership expanded through ancestor groups.
func (m *Manager) roomsForUser(ctx context.Context, userID int64, role access.Role) ([]string, error) {
	rooms := []string{access.UserRoom(userID), access.RoomAll}
	if role == access.RoleAdmin {
		rooms = append(rooms, access.RoomAdmin)
	}

	memberships, err := m.groups.GetMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return rooms, nil
	}

	allGroups, err := m.groups.List(ctx)
	if err != nil {
		return nil, err
	}

	ms := make([]access.Membership, len(memberships))
	for i, gm := range memberships {
		ms[i] = access.Membership{GroupID: gm.GroupID, IsAdmin: gm.IsAdmin}
	}
	nodes := make([]access.GroupNode, len(allGroups))
	for i, g := range allGroups {
		nodes[i] = access.GroupNode{ID: g.ID, ParentID: g.ParentID}
	}

	for _, groupID := range access.ExpandGroupIDs(ms, nodes) {
		rooms = append(rooms, access.GroupRoom(groupID))
	}
	return rooms, nil
}

// handleIdentify processes an IDENTIFY payload from a client.
func (m *Manager) handleIdentify(c *Connection, data json.RawMessage) {
	var identify IdentifyData
	if err := json.Unmarshal(data, &identify); err != nil {
		slog.Error("invalid identify data", "error", err)
		c.Close()
		return
	}

	claims, err := m.tokens.ValidateAccessToken(identify.Token)
	if err != nil {
		slog.Warn("invalid token in identify", "error", err)
		c.Close()
		return
	}

	c.UserID = claims.UserID
	c.SessionID = uuid.NewString()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rooms, err := m.roomsForUser(ctx, c.UserID, claims.Role)
	if err != nil {
		slog.Error("failed to resolve rooms for user", "userID", c.UserID, "error", err)
		c.Close()
		return
	}

	m.register(c)
	for _, roomID := range rooms {
		m.join(c.UserID, roomID)
	}

	// Set presence to online.
	if err := m.redis.SetPresence(ctx, c.UserID, "online"); err != nil {
		slog.Error("failed to set presence", "userID", c.UserID, "error", err)
	}

	c.SendEvent(EventReady, ReadyData{
		SessionID: c.SessionID,
		UserID:    c.UserID,
		Rooms:     rooms,
	})

	m.broadcastPresence(c.UserID, "online")
}

// handleResume processes a RESUME payload to replay missed events.
func (m *Manager) handleResume(c *Connection, data json.RawMessage) {
	var resume ResumeData
	if err := json.Unmarshal(data, &resume); err != nil {
		slog.Error("invalid resume data", "error", err)
		c.SendPayload(GatewayPayload{Op: OpReconnect})
		c.Close()
		return
	}

	claims, err := m.tokens.ValidateAccessToken(resume.Token)
	if err != nil {
		slog.Warn("invalid token in resume", "error", err)
		c.Close()
		return
	}

	c.UserID = claims.UserID
	c.SessionID = resume.SessionID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rooms, err := m.roomsForUser(ctx, c.UserID, claims.Role)
	if err != nil {
		slog.Error("failed to resolve rooms on resume", "userID", c.UserID, "error", err)
		c.SendPayload(GatewayPayload{Op: OpReconnect})
		c.Close()
		return
	}

	m.register(c)

	for _, roomID := range rooms {
		m.join(c.UserID, roomID)

		// Replay missed events from ring buffer.
		m.replayMu.RLock()
		rb, ok := m.replayBuffer[roomID]
		m.replayMu.RUnlock()

		if ok {
			events := rb.since(resume.Sequence)
			for _, ev := range events {
				c.SendEvent(ev.Name, ev.Data)
			}
		}
	}
}

// handlePresenceUpdate processes a client presence update.
func (m *Manager) handlePresenceUpdate(c *Connection, data json.RawMessage) {
	var update ClientPresenceUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return
	}

	switch update.Status {
	case "online", "idle", "invisible":
		// valid
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := update.Status
	if status == "invisible" {
		status = "offline"
	}
	if err := m.redis.SetPresence(ctx, c.UserID, status); err != nil {
		slog.Error("failed to update presence", "userID", c.UserID, "error", err)
		return
	}

	m.broadcastPresence(c.UserID, status)
}

// broadcastPresence sends a PRESENCE_UPDATE event to all rooms the user is in.
func (m *Manager) broadcastPresence(userID int64, status string) {
	event := Event{
		Name: EventPresenceUpdate,
		Data: PresenceUpdateData{
			UserID: userID,
			Status: status,
		},
	}

	m.mu.RLock()
	var roomIDs []string
	for roomID, members := range m.rooms {
		if members[userID] {
			roomIDs = append(roomIDs, roomID)
		}
	}
	m.mu.RUnlock()

	for _, roomID := range roomIDs {
		m.sendToRoomInternal(roomID, event)
	}
}

// storeReplayEvent adds an event to the room's replay ring buffer.
func (m *Manager) storeReplayEvent(roomID string, event Event) {
	m.replayMu.Lock()
	defer m.replayMu.Unlock()

	rb, ok := m.replayBuffer[roomID]
	if !ok {
		rb = newRingBuffer(replayBufferSize)
		m.replayBuffer[roomID] = rb
	}
	rb.add(event)
}

// sequencedEvent pairs an event with its sequence number for replay.
type sequencedEvent struct {
	Sequence int64
	Event
}

// ringBuffer is a fixed-size circular buffer for replay events.
type ringBuffer struct {
	events []sequencedEvent
	size   int
	pos    int
	seq    int64
	full   bool
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		events: make([]sequencedEvent, size),
		size:   size,
	}
}

func (rb *ringBuffer) add(event Event) {
	rb.seq++
	rb.events[rb.pos] = sequencedEvent{Sequence: rb.seq, Event: event}
	rb.pos = (rb.pos + 1) % rb.size
	if rb.pos == 0 {
		rb.full = true
	}
}

// since returns all events with sequence > afterSeq.
func (rb *ringBuffer) since(afterSeq int64) []Event {
	var result []Event
	count := rb.size
	if !rb.full {
		count = rb.pos
	}

	start := 0
	if rb.full {
		start = rb.pos
	}

	for i := 0; i < count; i++ {
		idx := (start + i) % rb.size
		if rb.events[idx].Sequence > afterSeq {
			result = append(result, rb.events[idx].Event)
		}
	}
	return result
}
