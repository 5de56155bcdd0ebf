// Package rooms implements the Room Store: in-memory rooms keyed by id,
// a secondary index by invite code, and the exclusive ownership of
// Room/GameState mutation.
package rooms

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	apperr "flagrooms/errors"
	"flagrooms/models"
)

const maxInviteCodeAttempts = 20

type entry struct {
	mu   sync.Mutex
	room *models.Room
}

// Store owns every live Room. Store.mu guards the maps only; an
// individual Room's own mutex guards its fields, its GameState, its
// member list, and its kicked-user set.
type Store struct {
	mu          sync.RWMutex
	byID        map[string]*entry
	byInvite    map[string]string // inviteCode -> roomID
}

func NewStore() *Store {
	return &Store{
		byID:     make(map[string]*entry),
		byInvite: make(map[string]string),
	}
}

// Create allocates a new room with a unique id and invite code, with
// caller as its sole member and host.
func (s *Store) Create(name, hostID, hostUsername string, settings models.RoomSettings) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.generateID()
	code, err := s.generateInviteCodeLocked()
	if err != nil {
		return nil, err
	}

	room := models.NewRoom(id, name, hostID, hostUsername, code, settings)
	room.Game.TotalQuestions = models.QuestionCountFor(settings.Difficulty)
	room.Game.Difficulty = settings.Difficulty

	s.byID[id] = &entry{room: room}
	s.byInvite[code] = id
	return room, nil
}

// WithRoom locks roomID's room (acquiring the room mutex, not the store
// mutex) and runs fn against it. This is the sole mutation path: every
// engine/session entrypoint that touches a Room goes through here so
// the per-room mutex discipline is structural, not convention.
func (s *Store) WithRoom(roomID string, fn func(r *models.Room) error) error {
	e := s.lookup(roomID)
	if e == nil {
		return apperr.New(apperr.RoomNotFound, "room not found")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.room)
}

// WithRoomByInviteCode resolves an invite code under the store lock,
// then delegates to WithRoom.
func (s *Store) WithRoomByInviteCode(code string, fn func(r *models.Room) error) error {
	s.mu.RLock()
	id, ok := s.byInvite[strings.ToUpper(code)]
	s.mu.RUnlock()
	if !ok {
		return apperr.New(apperr.RoomNotFound, "room not found")
	}
	return s.WithRoom(id, fn)
}

// Snapshot returns a shallow copy of a room's fields for read-only
// display (e.g. the HTTP room-lookup endpoint). The copy is made while
// holding the room lock, so callers never hold it themselves.
func (s *Store) Snapshot(roomID string) (models.Room, bool) {
	e := s.lookup(roomID)
	if e == nil {
		return models.Room{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.room, true
}

// Delete removes roomID from both indexes. Callers that also need to
// tear down game timers must do so before calling Delete.
func (s *Store) Delete(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[roomID]; ok {
		delete(s.byInvite, e.room.InviteCode)
		delete(s.byID, roomID)
	}
}

// RoomIDs returns a snapshot of every live room id, for the cleanup
// sweep and admin dump.
func (s *Store) RoomIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live rooms.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *Store) lookup(roomID string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[roomID]
}

func (s *Store) generateID() string {
	for {
		b := make([]byte, 8)
		_, _ = rand.Read(b)
		id := hex.EncodeToString(b)
		if _, exists := s.byID[id]; !exists {
			return id
		}
	}
}

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateInviteCodeLocked retries on collision, bounded so a
// saturated code space fails loudly instead of looping forever.
func (s *Store) generateInviteCodeLocked() (string, error) {
	for attempt := 0; attempt < maxInviteCodeAttempts; attempt++ {
		code := randomInviteCode()
		if _, exists := s.byInvite[code]; !exists {
			return code, nil
		}
	}
	return "", apperr.New(apperr.InternalError, "could not allocate a unique invite code")
}

func randomInviteCode() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	out := make([]byte, 6)
	for i, v := range b {
		out[i] = inviteCodeAlphabet[int(v)%len(inviteCodeAlphabet)]
	}
	return string(out)
}

// ExpiresAt returns when a room created at createdAt hits the given
// maximum lifetime.
func ExpiresAt(createdAt time.Time, lifetime time.Duration) time.Time {
	return createdAt.Add(lifetime)
}
