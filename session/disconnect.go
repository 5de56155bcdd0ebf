package session

import "flagrooms/models"

// Disconnect runs the teardown flow for a connection that was lost
// through liveness failure, explicit close, or backpressure eviction.
// It is also the heartbeat monitor's onLost callback, called from the
// heartbeat task's own goroutine (see main.go), and the broadcaster's
// onEvict callback, invoked asynchronously (see NewRouter) since an
// eviction may fire from a context that already holds a room's mutex.
func (r *Router) Disconnect(userID string) {
	r.heartbeat.Stop(userID)
	r.registry.Drop(userID)

	user, ok := r.userStore.Get(userID)
	if !ok {
		return
	}
	if user.RoomID != "" {
		r.leaveRoom(userID, user.RoomID, true)
	} else {
		r.userStore.Delete(userID)
	}
}

// leaveRoom removes userID from roomID's membership, runs host
// succession, and tears the room down if it is now empty. deleteUser
// controls whether the user record itself is dropped afterward (true
// for a full disconnect, false for an explicit in-session LEAVE_ROOM
// where the user stays connected and unaffiliated).
func (r *Router) leaveRoom(userID, roomID string, deleteUser bool) {
	var (
		wasHost       bool
		newHost       string
		remainingIDs  []string
		roomNowEmpty  bool
		roomSnapshot  models.Room
	)

	err := r.roomStore.WithRoom(roomID, func(room *models.Room) error {
		wasHost = room.Host == userID
		room.RemoveMember(userID)

		if wasHost && len(room.Members) > 0 {
			newHost = room.Members[0].UserID
			room.Host = newHost
		}
		roomNowEmpty = len(room.Members) == 0
		remainingIDs = memberIDsOf(room)
		roomSnapshot = *room
		return nil
	})
	if err != nil {
		// Room already gone (concurrent deletion) — nothing left to do.
		if deleteUser {
			r.userStore.Delete(userID)
		} else {
			r.userStore.SetRoom(userID, "", false)
		}
		return
	}

	if wasHost && newHost != "" {
		r.userStore.SetRoom(newHost, roomID, true)
		r.broadcaster.ToMembers(remainingIDs, MsgHostChanged, hostChangedPayload{NewHost: newHost})
	}
	r.broadcaster.ToMembers(remainingIDs, MsgUserLeft, userLeftPayload{UserID: userID, Room: &roomSnapshot})

	if roomNowEmpty {
		r.engine.StopGame(roomID, roomSnapshot.Host) // no-op broadcast target if already stopped
		r.roomStore.Delete(roomID)
	}

	if deleteUser {
		r.userStore.Delete(userID)
	} else {
		r.userStore.SetRoom(userID, "", false)
	}
}

// cleanupIfEmpty deletes roomID if it has no members left (used after
// a kick, which doesn't go through the disconnect flow).
func (r *Router) cleanupIfEmpty(roomID string) {
	snap, ok := r.roomStore.Snapshot(roomID)
	if !ok || len(snap.Members) > 0 {
		return
	}
	r.engine.StopGame(roomID, snap.Host)
	r.roomStore.Delete(roomID)
}
