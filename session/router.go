// Package session implements the Session Router: per-message
// authentication, rate-limit, validation, and dispatch, plus the
// disconnect flow that tears down a room membership when a connection
// is lost.
package session

import (
	"context"
	"encoding/json"
	"log"

	apperr "flagrooms/errors"
	"flagrooms/game"
	"flagrooms/models"
	"flagrooms/ratelimit"
	"flagrooms/realtime"
	"flagrooms/rooms"
	"flagrooms/users"
	"flagrooms/validation"
)

// Router wires every live connection to the rest of the system.
type Router struct {
	roomStore   *rooms.Store
	userStore   *users.Store
	registry    *realtime.Registry
	broadcaster *realtime.Broadcaster
	heartbeat   *realtime.Monitor
	engine      *game.Engine
	limiter     *ratelimit.Limiter
}

func NewRouter(
	roomStore *rooms.Store,
	userStore *users.Store,
	registry *realtime.Registry,
	broadcaster *realtime.Broadcaster,
	heartbeat *realtime.Monitor,
	engine *game.Engine,
	limiter *ratelimit.Limiter,
) *Router {
	r := &Router{
		roomStore:   roomStore,
		userStore:   userStore,
		registry:    registry,
		broadcaster: broadcaster,
		heartbeat:   heartbeat,
		engine:      engine,
		limiter:     limiter,
	}
	broadcaster.SetEvictHandler(func(userID string) {
		// Asynchronous: safeSend's eviction may fire while the caller
		// (e.g. the game engine) still holds the room's mutex, and the
		// disconnect flow below needs that same mutex, so it cannot run
		// synchronously here without deadlocking.
		go r.Disconnect(userID)
	})
	return r
}

// Attach wires a newly-upgraded connection's callbacks to this router
// and installs it, running onOpen.
func (r *Router) Attach(conn *realtime.Connection, username string) {
	conn.OnMessage = r.onMessage
	conn.OnClose = r.onClose
	r.onOpen(conn, username)
}

func (r *Router) onOpen(conn *realtime.Connection, username string) {
	userID := conn.UserID
	user := r.userStore.GetOrCreate(userID, username)

	if evicted := r.registry.Add(userID, conn); evicted != nil {
		r.heartbeat.Stop(userID)
	}
	r.heartbeat.Start(conn)

	var roomView *models.Room
	if user.RoomID != "" {
		if snap, ok := r.roomStore.Snapshot(user.RoomID); ok && snap.MemberByID(userID) != nil {
			view := snap
			roomView = &view
		} else {
			// Stale roomId: clear it, then fall through to the host check
			// below, which rejoins and corrects the stored roomId.
			r.userStore.SetRoom(userID, "", false)
		}
	}
	if roomView == nil {
		for _, id := range r.roomStore.RoomIDs() {
			if snap, ok := r.roomStore.Snapshot(id); ok && snap.Host == userID {
				roomView = &snap
				r.userStore.SetRoom(userID, snap.ID, true)
				break
			}
		}
	}

	isAdmin := false
	if u, ok := r.userStore.Get(userID); ok {
		isAdmin = u.IsAdmin
	}

	r.broadcaster.ToUser(userID, MsgAuthSuccess, authSuccessPayload{
		UserID:  userID,
		IsAdmin: isAdmin,
		User:    user,
		Room:    roomView,
	})
}

func (r *Router) onMessage(conn *realtime.Connection, payload []byte) {
	if len(payload) == 0 {
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		r.broadcaster.ToUser(conn.UserID, MsgError, errorPayload{
			Code:    string(apperr.WebsocketMessageError),
			Message: "malformed message",
		})
		return
	}

	if ae := validateStructure(msg.Type, msg.Data); ae != nil {
		r.sendError(conn.UserID, ae)
		return
	}

	if allowed, retryAfter := r.checkRateLimit(conn.UserID, msg.Type); !allowed {
		r.sendError(conn.UserID, apperr.WithDetails(apperr.RateLimitExceeded, "rate limit exceeded", map[string]interface{}{
			"retryAfter": retryAfter,
		}))
		return
	}

	r.userStore.Touch(conn.UserID)

	handler, ok := r.dispatchTable()[msg.Type]
	if !ok {
		return // unknown types are ignored silently
	}

	if err := handler(conn.UserID, msg.Data); err != nil {
		r.sendError(conn.UserID, apperr.As(err))
	}
}

func (r *Router) checkRateLimit(userID, msgType string) (bool, int64) {
	rateLimited := map[string]bool{
		TypeCreateRoom: true, TypeJoinRoom: true, TypeStartGame: true, TypeSubmitAnswer: true,
	}
	if !rateLimited[msgType] {
		return true, 0
	}
	decision, err := r.limiter.Allow(context.Background(), msgType, userID)
	if err != nil {
		log.Printf("session: rate limiter error for %s/%s: %v", msgType, userID, err)
		return true, 0
	}
	return decision.Allowed, decision.RetryAfter.Milliseconds()
}

// validateStructure runs the per-type structural checks a rate-limited
// message must pass before it can consume any of the caller's budget.
// It mirrors the parsing each handler does, but does not mutate state
// and does not require the user to already be in a room.
func validateStructure(msgType string, raw json.RawMessage) *apperr.AppError {
	switch msgType {
	case TypeCreateRoom:
		var req createRoomRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return apperr.New(apperr.ValidationError, "malformed CREATE_ROOM payload")
		}
		if verr := validation.RoomSettings(&req.Settings); verr != nil {
			return verr
		}
	case TypeJoinRoom:
		var req joinRoomRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return apperr.New(apperr.ValidationError, "malformed JOIN_ROOM payload")
		}
		if _, verr := validation.InviteCode(req.InviteCode); verr != nil {
			return verr
		}
		if _, verr := validation.Username(req.Username); verr != nil {
			return verr
		}
	case TypeSubmitAnswer:
		var req submitAnswerRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return apperr.New(apperr.ValidationError, "malformed SUBMIT_ANSWER payload")
		}
		if _, verr := validation.Answer(req.Answer); verr != nil {
			return verr
		}
	}
	return nil
}

func (r *Router) sendError(userID string, ae *apperr.AppError) {
	r.broadcaster.ToUser(userID, MsgError, errorPayload{
		Code:    string(ae.Code),
		Message: ae.Message,
		Details: ae.Details,
	})
}

type handlerFunc func(userID string, data json.RawMessage) error

func (r *Router) dispatchTable() map[string]handlerFunc {
	return map[string]handlerFunc{
		TypeCreateRoom:         r.handleCreateRoom,
		TypeJoinRoom:           r.handleJoinRoom,
		TypeLeaveRoom:          r.handleLeaveRoom,
		TypeSubmitAnswer:       r.handleSubmitAnswer,
		TypeUpdateRoomSettings: r.handleUpdateSettings,
		TypeKickUser:           r.handleKickUser,
		TypeStartGame:          r.handleStartGame,
		TypeStopGame:           r.handleStopGame,
		TypeRestartGame:        r.handleRestartGame,
		TypeHeartbeatResponse:  r.handleHeartbeatResponse,
	}
}

func (r *Router) onClose(conn *realtime.Connection) {
	if conn.ClosedByNewSession() {
		r.registry.Remove(conn.UserID, conn)
		return
	}
	r.Disconnect(conn.UserID)
}
