package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flagrooms/rooms"
	"flagrooms/users"
)

// AdminHandler serves bcrypt-gated diagnostic dumps, mounted behind
// middleware.AdminAuth.
type AdminHandler struct {
	rooms *rooms.Store
	users *users.Store
}

func NewAdminHandler(roomStore *rooms.Store, userStore *users.Store) *AdminHandler {
	return &AdminHandler{rooms: roomStore, users: userStore}
}

func (h *AdminHandler) DumpRooms(c *gin.Context) {
	ids := h.rooms.RoomIDs()
	out := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if snap, ok := h.rooms.Snapshot(id); ok {
			out = append(out, snap)
		}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (h *AdminHandler) DumpUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.users.All()})
}
