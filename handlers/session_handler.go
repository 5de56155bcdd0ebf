package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "flagrooms/errors"
	"flagrooms/middleware"
	"flagrooms/validation"
)

// SessionHandler mints the session cookie a client needs before it can
// open the /ws upgrade. There is no password here, just an opaque
// identity tied to a chosen username.
type SessionHandler struct {
	auth *middleware.SessionAuth
}

func NewSessionHandler(auth *middleware.SessionAuth) *SessionHandler {
	return &SessionHandler{auth: auth}
}

type createSessionRequest struct {
	Username string `json:"username"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ae := apperr.New(apperr.InvalidInput, "invalid request body")
		c.JSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
		return
	}

	username, verr := validation.Username(req.Username)
	if verr != nil {
		c.JSON(verr.HTTPStatus(), apperr.Envelope(verr, ""))
		return
	}

	userID, err := generateUserID()
	if err != nil {
		ae := apperr.New(apperr.InternalError, "could not create session")
		c.JSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
		return
	}

	if err := h.auth.Issue(c, userID, username); err != nil {
		ae := apperr.New(apperr.InternalError, "could not create session")
		c.JSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": userID, "username": username})
}

func generateUserID() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
