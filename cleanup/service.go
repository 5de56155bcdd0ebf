// Package cleanup implements the periodic sweep: inactive users, empty
// rooms, and TTL-bound room expiry/warnings.
package cleanup

import (
	"log"
	"time"

	"flagrooms/game"
	"flagrooms/models"
	"flagrooms/realtime"
	"flagrooms/rooms"
	"flagrooms/session"
	"flagrooms/users"
)

// Config tunes the cleanup service.
type Config struct {
	Interval            time.Duration // default 5-30 min
	InactiveUserTimeout time.Duration // default 5 min
	EmptyRoomTimeout    time.Duration // default 5-10 min
	MaxRoomLifetime     time.Duration // 4h default
	TTLWarningWindow    time.Duration // 5 min before expiry
}

func DefaultConfig() Config {
	return Config{
		Interval:            10 * time.Minute,
		InactiveUserTimeout: 5 * time.Minute,
		EmptyRoomTimeout:    10 * time.Minute,
		MaxRoomLifetime:     4 * time.Hour,
		TTLWarningWindow:    5 * time.Minute,
	}
}

// Service runs the sweep on its own schedule, independent of the
// connection/game lifecycle.
type Service struct {
	cfg         Config
	roomStore   *rooms.Store
	userStore   *users.Store
	broadcaster *realtime.Broadcaster
	engine      *game.Engine
	router      *session.Router
	stop        chan struct{}

	// warned tracks rooms that already received a TTL warning this
	// lifetime, so repeated sweeps inside the warning window don't spam.
	warned map[string]bool
}

func NewService(cfg Config, roomStore *rooms.Store, userStore *users.Store, broadcaster *realtime.Broadcaster, engine *game.Engine, router *session.Router) *Service {
	return &Service{
		cfg:         cfg,
		roomStore:   roomStore,
		userStore:   userStore,
		broadcaster: broadcaster,
		engine:      engine,
		router:      router,
		stop:        make(chan struct{}),
		warned:      make(map[string]bool),
	}
}

// Start launches the periodic sweep goroutine.
func (s *Service) Start() {
	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Stop halts the sweep goroutine, part of graceful shutdown.
func (s *Service) Stop() {
	close(s.stop)
}

// sweep runs the three isolated sub-sweeps. Each is independently
// recovered so one failing sub-sweep can never take down the process
// or block the others.
func (s *Service) sweep() {
	inactive := s.safeSweep("inactive-users", s.sweepInactiveUsers)
	expired := s.safeSweep("room-ttl", s.sweepRoomTTL)
	empty := s.safeSweep("empty-rooms", s.sweepEmptyRooms)
	log.Printf("cleanup: sweep complete (inactiveUsers=%d, expiredRooms=%d, emptyRooms=%d)", inactive, expired, empty)
}

func (s *Service) safeSweep(name string, fn func() int) (count int) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("cleanup: %s sweep panicked: %v", name, rec)
		}
	}()
	return fn()
}

func (s *Service) sweepInactiveUsers() int {
	cutoff := time.Now().Add(-s.cfg.InactiveUserTimeout)
	ids := s.userStore.InactiveSince(cutoff)
	for _, id := range ids {
		s.router.Disconnect(id)
	}
	return len(ids)
}

func (s *Service) sweepEmptyRooms() int {
	count := 0
	cutoff := time.Now().Add(-s.cfg.EmptyRoomTimeout)
	for _, id := range s.roomStore.RoomIDs() {
		snap, ok := s.roomStore.Snapshot(id)
		if !ok || len(snap.Members) > 0 {
			continue
		}
		if snap.CreatedAt.After(cutoff) {
			continue
		}
		s.engine.StopGame(id, snap.Host)
		s.roomStore.Delete(id)
		count++
	}
	return count
}

func (s *Service) sweepRoomTTL() int {
	expiredCount := 0
	now := time.Now()
	for _, id := range s.roomStore.RoomIDs() {
		snap, ok := s.roomStore.Snapshot(id)
		if !ok {
			continue
		}
		expiresAt := snap.CreatedAt.Add(s.cfg.MaxRoomLifetime)
		remaining := expiresAt.Sub(now)

		if remaining <= 0 {
			s.engine.StopGame(id, snap.Host)
			s.broadcaster.ToMembers(memberIDs(&snap), session.MsgRoomExpired, map[string]interface{}{"roomId": id})
			s.roomStore.Delete(id)
			delete(s.warned, id)
			expiredCount++
			continue
		}

		if remaining <= s.cfg.TTLWarningWindow && !s.warned[id] {
			s.warned[id] = true
			s.broadcaster.ToMembers(memberIDs(&snap), session.MsgRoomTTLWarning, map[string]interface{}{
				"roomId":      id,
				"expiresAt":   expiresAt.UnixMilli(),
				"remainingMs": remaining.Milliseconds(),
			})
		}
	}
	return expiredCount
}

func memberIDs(r *models.Room) []string {
	ids := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}
