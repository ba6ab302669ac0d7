package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventsphere/eventsphere-api/internal/application"
	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/pkg/helpers"
	"github.com/eventsphere/eventsphere-api/pkg/response"
)

const (
	CtxUserKey   = "currentUser"
	CtxUserIDKey = "userID"
)

// Auth reads the session cookie, validates the token, and resolves the
// user row so deleted accounts are rejected immediately. The resolved
// *entity.User is attached to the gin context for downstream handlers.
func Auth(auth *application.AuthService, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookie)
		if err != nil || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		u, err := auth.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "user not found", nil)
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by Auth.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}
