package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	apperr "flagrooms/errors"
)

// AdminAuth gates the admin dump endpoints behind a bcrypt-hashed API
// key compared via the x-api-key header.
func AdminAuth(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("x-api-key")
		if key == "" {
			ae := apperr.New(apperr.AuthenticationError, "missing x-api-key")
			c.AbortWithStatusJSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			ae := apperr.New(apperr.AuthenticationError, "invalid x-api-key")
			c.AbortWithStatusJSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
			return
		}
		c.Next()
	}
}
