package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperr "flagrooms/errors"
)

const sessionCookieName = "session_token"
const sessionTTL = 24 * time.Hour

// sessionClaims is the signed payload carried by the session cookie. A
// user authenticates once over HTTP and the cookie is presented again
// on every reconnect, establishing identity before the WebSocket
// upgrade rather than through a path-param userId.
type sessionClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionAuth issues and verifies the signed session cookie. The cookie
// is issued by POST /api/session; the /ws upgrade only verifies it and
// rejects a request that lacks a valid one.
type SessionAuth struct {
	secret []byte
}

func NewSessionAuth(secret string) *SessionAuth {
	return &SessionAuth{secret: []byte(secret)}
}

// Issue signs a new session cookie for (userID, username) and sets it on
// the response.
func (s *SessionAuth) Issue(c *gin.Context, userID, username string) error {
	claims := sessionClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return err
	}
	c.SetCookie(sessionCookieName, signed, int(sessionTTL.Seconds()), "/", "", true, true)
	return nil
}

// Verify reads and validates the session cookie from the request,
// returning the identity it carries.
func (s *SessionAuth) Verify(r *http.Request) (userID, username string, err error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", "", apperr.New(apperr.AuthenticationError, "missing session cookie")
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", apperr.New(apperr.AuthenticationError, "invalid session cookie")
	}
	return claims.UserID, claims.Username, nil
}
