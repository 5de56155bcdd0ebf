package realtime

import (
	"encoding/json"
	"log"
	"time"
)

// Envelope is the wire frame shape sent to every client.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// MemberLister resolves a room to the userIds currently in it, without
// the realtime package needing to import the rooms package. Broadcaster
// call sites already hold whatever lock they need and pass in a plain
// snapshot, not a live Room reference.
type MemberLister func(roomID string) []string

// Broadcaster fans messages out to a room, a user, or everyone,
// evicting any connection whose send fails or backs up.
type Broadcaster struct {
	registry *Registry
	members  MemberLister
	onEvict  func(userID string)
}

func NewBroadcaster(registry *Registry, members MemberLister) *Broadcaster {
	return &Broadcaster{registry: registry, members: members}
}

// SetEvictHandler registers a callback invoked whenever safeSend decides
// a connection must be torn down, triggering the disconnect flow.
func (b *Broadcaster) SetEvictHandler(f func(userID string)) {
	b.onEvict = f
}

// ToRoom fans a message out to every member of roomID except those in
// exclude. It resolves membership itself via the injected MemberLister,
// so callers must NOT already hold that room's mutex — use ToMembers
// instead when the caller already has a member snapshot (e.g. the game
// engine, which emits while holding the room lock).
func (b *Broadcaster) ToRoom(roomID, msgType string, data interface{}, exclude ...string) {
	b.ToMembers(b.members(roomID), msgType, data, exclude...)
}

// ToMembers fans a message out to the given userIDs except those in
// exclude, without resolving membership itself. Safe to call while
// holding a room's mutex.
func (b *Broadcaster) ToMembers(memberIDs []string, msgType string, data interface{}, exclude ...string) {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	payload := b.encode(msgType, data)
	for _, userID := range memberIDs {
		if excluded[userID] {
			continue
		}
		b.safeSend(userID, payload)
	}
}

// ToUser sends a message to a single user.
func (b *Broadcaster) ToUser(userID, msgType string, data interface{}) {
	b.safeSend(userID, b.encode(msgType, data))
}

// ToAll fans a message out to every registered connection.
func (b *Broadcaster) ToAll(msgType string, data interface{}) {
	payload := b.encode(msgType, data)
	for _, conn := range b.registry.All() {
		b.sendOrEvict(conn, payload)
	}
}

func (b *Broadcaster) encode(msgType string, data interface{}) []byte {
	env := Envelope{Type: msgType, Data: data, Timestamp: time.Now().UnixMilli()}
	payload, err := json.Marshal(env)
	if err != nil {
		log.Printf("broadcaster: failed to marshal %s: %v", msgType, err)
		return nil
	}
	return payload
}

// safeSend resolves the connection, checks liveness, checks
// backpressure, sends, and evicts on any failure.
func (b *Broadcaster) safeSend(userID string, payload []byte) {
	if payload == nil {
		return
	}
	conn, ok := b.registry.Get(userID)
	if !ok {
		b.evict(userID)
		return
	}
	b.sendOrEvict(conn, payload)
}

func (b *Broadcaster) sendOrEvict(conn *Connection, payload []byte) {
	if !conn.Send(payload) {
		b.evict(conn.UserID)
	}
}

func (b *Broadcaster) evict(userID string) {
	if b.onEvict != nil {
		b.onEvict(userID)
	}
}
