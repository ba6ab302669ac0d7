package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventsphere/eventsphere-api/pkg/response"
)

// RequireRole gates a route to one account role. Must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || u.Role != role {
			response.AbortError(c, http.StatusForbidden, "insufficient role", nil)
			return
		}
		c.Next()
	}
}
