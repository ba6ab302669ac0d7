package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eventsphere/eventsphere-api/internal/application"
	"github.com/eventsphere/eventsphere-api/internal/container"
	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	handlers "github.com/eventsphere/eventsphere-api/internal/interface/http"
	"github.com/eventsphere/eventsphere-api/internal/interface/middleware"
)

type ProfileModule struct {
	Handler *handlers.ProfileHandler
	Auth    *application.AuthService
}

func NewProfileModule(h *handlers.ProfileHandler, auth *application.AuthService) *ProfileModule {
	return &ProfileModule{Handler: h, Auth: auth}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	profile := rg.Group("/profile")
	profile.Use(middleware.Auth(m.Auth, container.GetJWT()))
	profile.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		user := profile.Group("/user", middleware.RequireRole(entity.RoleUser))
		user.GET("", m.Handler.GetUser)
		user.PUT("", m.Handler.UpdateUser)
		user.DELETE("", m.Handler.DeleteUser)

		owner := profile.Group("/owner", middleware.RequireRole(entity.RoleOwner))
		owner.GET("", m.Handler.GetOwner)
		owner.PUT("", m.Handler.UpdateOwner)
		owner.DELETE("", m.Handler.DeleteOwner)
	}
}
