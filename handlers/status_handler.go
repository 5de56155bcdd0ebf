package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"flagrooms/rooms"
	"flagrooms/users"
)

// StatusHandler serves the unauthenticated health/status/stats surface.
type StatusHandler struct {
	rooms *rooms.Store
	users *users.Store
}

func NewStatusHandler(roomStore *rooms.Store, userStore *users.Store) *StatusHandler {
	return &StatusHandler{rooms: roomStore, users: userStore}
}

func (h *StatusHandler) Status(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *StatusHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
	})
}

func (h *StatusHandler) Stats(c *gin.Context) {
	activeGames := 0
	for _, id := range h.rooms.RoomIDs() {
		if snap, ok := h.rooms.Snapshot(id); ok && snap.Game.IsActive {
			activeGames++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"rooms":       h.rooms.Count(),
		"users":       h.users.Count(),
		"activeGames": activeGames,
		"timestamp":   time.Now().UnixMilli(),
	})
}
