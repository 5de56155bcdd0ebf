package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "flagrooms/errors"
)

// CORS reflects the Origin header back only when it matches the
// allow-list and rejects any other Origin. A request without an Origin
// header passes only if it is a GET.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin == "" {
			if c.Request.Method != http.MethodGet {
				ae := apperr.New(apperr.AuthorizationError, "origin header required")
				c.AbortWithStatusJSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
				return
			}
			c.Next()
			return
		}

		if !allowed[origin] {
			ae := apperr.New(apperr.AuthorizationError, "origin not allowed")
			c.AbortWithStatusJSON(ae.HTTPStatus(), apperr.Envelope(ae, ""))
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Api-Key")

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Max-Age", "86400")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
