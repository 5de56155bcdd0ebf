package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "flagrooms/errors"
	"flagrooms/models"
	"flagrooms/rooms"
)

// RoomHandler serves a pre-join room summary so a client can show
// "Room ABC123 · 3/5 players" before spending a JOIN_ROOM round-trip.
type RoomHandler struct {
	rooms *rooms.Store
}

func NewRoomHandler(roomStore *rooms.Store) *RoomHandler {
	return &RoomHandler{rooms: roomStore}
}

type roomSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
	MaxRoomSize int    `json:"maxRoomSize"`
	IsActive    bool   `json:"isActive"`
	GameMode    string `json:"gameMode"`
}

func (h *RoomHandler) GetByInviteCode(c *gin.Context) {
	code := c.Param("inviteCode")

	var found roomSummary
	err := h.rooms.WithRoomByInviteCode(code, func(r *models.Room) error {
		found = roomSummary{
			ID:          r.ID,
			Name:        r.Name,
			MemberCount: len(r.Members),
			MaxRoomSize: r.Settings.MaxRoomSize,
			IsActive:    r.Game.IsActive,
			GameMode:    string(r.Settings.GameMode),
		}
		return nil
	})
	if err != nil {
		ae := apperr.As(err)
		c.JSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": found})
}
