// Package users implements the User Store: in-memory users keyed by id,
// with last-active timestamps.
package users

import (
	"sync"
	"time"

	"flagrooms/models"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewStore() *Store {
	return &Store{users: make(map[string]*models.User)}
}

// GetOrCreate returns the existing user for id, or creates one with
// username if absent.
func (s *Store) GetOrCreate(id, username string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u
	}
	u := &models.User{
		ID:             id,
		Username:       username,
		Created:        time.Now(),
		LastActiveTime: time.Now(),
	}
	s.users[id] = u
	return u
}

// Get returns the user for id, if present.
func (s *Store) Get(id string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// Delete removes the user record for id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// Touch refreshes a user's lastActiveTime on any observed activity.
func (s *Store) Touch(id string) {
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	if ok {
		s.mu.Lock()
		u.LastActiveTime = time.Now()
		s.mu.Unlock()
	}
}

// SetRoom updates a user's room affiliation and admin flag.
func (s *Store) SetRoom(id, roomID string, isAdmin bool) {
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	if ok {
		s.mu.Lock()
		u.RoomID = roomID
		u.IsAdmin = isAdmin
		s.mu.Unlock()
	}
}

// InactiveSince returns the ids of all users whose lastActiveTime is
// older than cutoff, for the cleanup sweep.
func (s *Store) InactiveSince(cutoff time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for id, u := range s.users {
		if u.LastActiveTime.Before(cutoff) {
			out = append(out, id)
		}
	}
	return out
}

// Count returns the number of tracked users.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// All returns a snapshot of every user, for the admin dump endpoint.
func (s *Store) All() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out
}
