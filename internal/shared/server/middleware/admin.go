package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cvmatch-backend/internal/shared/server/respond"
)

// AdminToken guards admin routes with a static token header. An empty
// configured token disables the routes entirely.
func AdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(token) == "" {
			respond.Error(c, http.StatusNotFound, "not_found", "not found", nil)
			return
		}
		presented := strings.TrimSpace(c.GetHeader("X-Admin-Token"))
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid admin token", nil)
			return
		}
		c.Next()
	}
}
