// Package routes wires the HTTP surface and the /ws upgrade: a public
// api group, an admin group gated by API key, a bare websocket route,
// and a health route.
package routes

import (
	"github.com/gin-gonic/gin"

	"flagrooms/handlers"
	"flagrooms/middleware"
)

// Dependencies collects every handler Setup mounts.
type Dependencies struct {
	Status  *handlers.StatusHandler
	Room    *handlers.RoomHandler
	Admin   *handlers.AdminHandler
	Session *handlers.SessionHandler
	WS      *WSHandler

	CORSOrigins  []string
	AdminKeyHash string
}

func Setup(router *gin.Engine, deps Dependencies) {
	router.Use(middleware.CORS(deps.CORSOrigins))

	api := router.Group("/api")
	{
		api.GET("/status", deps.Status.Status)
		api.GET("/healthz", deps.Status.Healthz)
		api.GET("/stats", deps.Status.Stats)
		api.GET("/rooms/:inviteCode", deps.Room.GetByInviteCode)
		api.POST("/session", deps.Session.Create)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(deps.AdminKeyHash))
		{
			admin.GET("/rooms", deps.Admin.DumpRooms)
			admin.GET("/users", deps.Admin.DumpUsers)
		}
	}

	router.GET("/ws", deps.WS.ServeWS)
}
