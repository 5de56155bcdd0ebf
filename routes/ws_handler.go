package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	apperr "flagrooms/errors"
	"flagrooms/middleware"
	"flagrooms/realtime"
	"flagrooms/session"
)

// wsUpgrader defers origin checking to the allow-list check at the top
// of ServeWS, so it simply accepts (the origin was validated, if
// present, before Upgrade is ever called).
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler wires the /ws endpoint to the Connection Registry and
// Session Router, authenticating identity from the session cookie
// before the upgrade rather than from a path parameter.
type WSHandler struct {
	auth    *middleware.SessionAuth
	guard   *middleware.IPGuard
	router  *session.Router
	origins map[string]bool
}

func NewWSHandler(auth *middleware.SessionAuth, guard *middleware.IPGuard, router *session.Router, allowedOrigins []string) *WSHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &WSHandler{auth: auth, guard: guard, router: router, origins: origins}
}

func (h *WSHandler) ServeWS(c *gin.Context) {
	ip := c.ClientIP()

	if origin := c.GetHeader("Origin"); origin != "" && !h.origins[origin] {
		ae := apperr.New(apperr.AuthorizationError, "origin not allowed")
		c.JSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
		return
	}

	if !h.guard.Allow(ip) {
		ae := apperr.New(apperr.AuthorizationError, "connection rejected")
		c.JSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
		return
	}

	userID, username, err := h.auth.Verify(c.Request)
	if err != nil {
		ae := apperr.New(apperr.AuthenticationError, "missing or invalid session")
		c.JSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
		return
	}

	socket, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("routes: ws upgrade failed for %s: %v", ip, err)
		return
	}

	h.guard.Connected(ip)
	conn := realtime.NewConnection(socket, userID, ip)
	h.router.Attach(conn, username)

	routerOnClose := conn.OnClose
	conn.OnClose = func(c *realtime.Connection) {
		h.guard.Disconnected(ip)
		if routerOnClose != nil {
			routerOnClose(c)
		}
	}
	conn.Start()
}
