package session

import (
	"encoding/json"

	apperr "flagrooms/errors"
	"flagrooms/models"
	"flagrooms/validation"
)

func (r *Router) handleCreateRoom(userID string, raw json.RawMessage) error {
	user, ok := r.userStore.Get(userID)
	if !ok {
		return apperr.New(apperr.UserNotFound, "user not found")
	}
	if user.InRoom() {
		return apperr.New(apperr.UserAlreadyInRoom, "already in a room")
	}

	var req createRoomRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return apperr.New(apperr.ValidationError, "malformed CREATE_ROOM payload")
	}
	if err := validation.RoomSettings(&req.Settings); err != nil {
		return err
	}
	name, verr := validation.Username(req.Name)
	if verr != nil {
		name = "Room"
	}

	room, err := r.roomStore.Create(name, userID, user.Username, req.Settings)
	if err != nil {
		return err
	}
	r.userStore.SetRoom(userID, room.ID, true)

	r.broadcaster.ToUser(userID, MsgCreateRoomSuccess, roomPayload{Room: room})
	return nil
}

func (r *Router) handleJoinRoom(userID string, raw json.RawMessage) error {
	user, ok := r.userStore.Get(userID)
	if !ok {
		return apperr.New(apperr.UserNotFound, "user not found")
	}
	if user.InRoom() {
		return apperr.New(apperr.UserAlreadyInRoom, "already in a room")
	}

	var req joinRoomRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return apperr.New(apperr.ValidationError, "malformed JOIN_ROOM payload")
	}
	code, verr := validation.InviteCode(req.InviteCode)
	if verr != nil {
		return verr
	}
	username, verr := validation.Username(req.Username)
	if verr != nil {
		return verr
	}

	var joined *models.Room
	err := r.roomStore.WithRoomByInviteCode(code, func(room *models.Room) error {
		if room.IsKicked(userID) {
			return apperr.New(apperr.KickedFromRoom, "you were kicked from this room")
		}
		if room.HasUsername(username) {
			return apperr.New(apperr.UsernameTaken, "username already taken in this room")
		}
		if room.IsFull() {
			return apperr.New(apperr.RoomFull, "room is full")
		}
		room.Members = append(room.Members, &models.Member{UserID: userID, Username: username})
		view := *room
		joined = &view
		r.broadcaster.ToMembers(memberIDsOf(room), MsgUserJoined, userJoinedPayload{UserID: userID, Username: username}, userID)
		return nil
	})
	if err != nil {
		return err
	}

	r.userStore.SetRoom(userID, joined.ID, false)
	r.broadcaster.ToUser(userID, MsgJoinRoomSuccess, roomPayload{Room: joined})
	return nil
}

func (r *Router) handleLeaveRoom(userID string, _ json.RawMessage) error {
	user, ok := r.userStore.Get(userID)
	if !ok || !user.InRoom() {
		return nil
	}
	r.leaveRoom(userID, user.RoomID, false)
	return nil
}

func (r *Router) handleSubmitAnswer(userID string, raw json.RawMessage) error {
	user, ok := r.userStore.Get(userID)
	if !ok || !user.InRoom() {
		return apperr.New(apperr.PermissionDenied, "not in a room")
	}

	var req submitAnswerRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return apperr.New(apperr.ValidationError, "malformed SUBMIT_ANSWER payload")
	}
	answer, verr := validation.Answer(req.Answer)
	if verr != nil {
		return verr
	}

	return r.engine.SubmitAnswer(user.RoomID, userID, answer)
}

func (r *Router) handleUpdateSettings(userID string, raw json.RawMessage) error {
	user, ok := r.userStore.Get(userID)
	if !ok || !user.InRoom() {
		return apperr.New(apperr.PermissionDenied, "not in a room")
	}

	var req updateSettingsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return apperr.New(apperr.ValidationError, "malformed UPDATE_ROOM_SETTINGS payload")
	}

	var updated models.RoomSettings
	err := r.roomStore.WithRoom(user.RoomID, func(room *models.Room) error {
		if room.Host != userID {
			return apperr.New(apperr.PermissionDenied, "only the host can change settings")
		}
		if room.Game.Phase != models.PhaseWaiting && room.Game.Phase != models.PhaseFinished {
			return apperr.New(apperr.InvalidGameState, "settings can only change between games")
		}
		next := room.Settings
		if req.Difficulty != nil {
			next.Difficulty = *req.Difficulty
		}
		if req.MaxRoomSize != nil {
			next.MaxRoomSize = *req.MaxRoomSize
		}
		if req.TimePerQuestion != nil {
			next.TimePerQuestion = *req.TimePerQuestion
		}
		if req.GameMode != nil {
			next.GameMode = *req.GameMode
		}
		if verr := validation.RoomSettings(&next); verr != nil {
			return verr
		}
		if next.MaxRoomSize < len(room.Members) {
			return apperr.New(apperr.ValidationError, "maxRoomSize cannot be below current member count")
		}
		room.Settings = next
		updated = next
		r.broadcaster.ToMembers(memberIDsOf(room), MsgSettingsUpdated, settingsUpdatedPayload{Settings: updated})
		return nil
	})
	return err
}

func (r *Router) handleKickUser(userID string, raw json.RawMessage) error {
	user, ok := r.userStore.Get(userID)
	if !ok || !user.InRoom() {
		return apperr.New(apperr.PermissionDenied, "not in a room")
	}

	var req kickUserRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return apperr.New(apperr.ValidationError, "malformed KICK_USER payload")
	}

	err := r.roomStore.WithRoom(user.RoomID, func(room *models.Room) error {
		if room.Host != userID {
			return apperr.New(apperr.PermissionDenied, "only the host can kick")
		}
		if req.UserID == room.Host {
			return apperr.New(apperr.PermissionDenied, "host cannot kick themself")
		}
		if room.MemberByID(req.UserID) == nil {
			return apperr.New(apperr.UserNotFound, "user is not a member")
		}
		room.KickedUsers[req.UserID] = true
		room.RemoveMember(req.UserID)
		r.broadcaster.ToMembers(memberIDsOf(room), MsgUserKicked, userKickedPayload{UserID: req.UserID})
		r.broadcaster.ToUser(req.UserID, MsgKicked, nil)
		return nil
	})
	if err != nil {
		return err
	}

	r.userStore.SetRoom(req.UserID, "", false)
	if conn, ok := r.registry.Get(req.UserID); ok {
		conn.CloseWithCode(1000, "kicked")
	}
	r.cleanupIfEmpty(user.RoomID)
	return nil
}

func (r *Router) handleStartGame(userID string, _ json.RawMessage) error {
	user, ok := r.userStore.Get(userID)
	if !ok || !user.InRoom() {
		return apperr.New(apperr.PermissionDenied, "not in a room")
	}
	return r.engine.StartGame(user.RoomID, userID)
}

func (r *Router) handleStopGame(userID string, _ json.RawMessage) error {
	user, ok := r.userStore.Get(userID)
	if !ok || !user.InRoom() {
		return apperr.New(apperr.PermissionDenied, "not in a room")
	}
	return r.engine.StopGame(user.RoomID, userID)
}

func (r *Router) handleRestartGame(userID string, _ json.RawMessage) error {
	user, ok := r.userStore.Get(userID)
	if !ok || !user.InRoom() {
		return apperr.New(apperr.PermissionDenied, "not in a room")
	}
	return r.engine.RestartGame(user.RoomID, userID)
}

func (r *Router) handleHeartbeatResponse(userID string, _ json.RawMessage) error {
	r.heartbeat.Response(userID)
	return nil
}

func memberIDsOf(room *models.Room) []string {
	ids := make([]string, 0, len(room.Members))
	for _, m := range room.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}
