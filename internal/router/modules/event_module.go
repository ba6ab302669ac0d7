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

type EventModule struct {
	Handler *handlers.EventHandler
	Auth    *application.AuthService
}

func NewEventModule(h *handlers.EventHandler, auth *application.AuthService) *EventModule {
	return &EventModule{Handler: h, Auth: auth}
}

func (m *EventModule) Register(rg *gin.RouterGroup) {
	authMW := middleware.Auth(m.Auth, container.GetJWT())

	// All event routes require a session. Fixed paths are registered before
	// the :id routes so gin does not swallow them as ids.
	events := rg.Group("/events")
	events.Use(authMW)
	events.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		events.GET("", m.Handler.List)
		events.GET("/search", m.Handler.Search)
		events.GET("/owner", middleware.RequireRole(entity.RoleOwner), m.Handler.ListOwned)
		events.GET("/registered", middleware.RequireRole(entity.RoleUser), m.Handler.ListRegistered)
		events.GET("/:id", m.Handler.Get)

		events.POST("", middleware.RequireRole(entity.RoleOwner), m.Handler.Create)
		events.PUT("/:id", middleware.RequireRole(entity.RoleOwner), m.Handler.Update)
		events.DELETE("/:id", middleware.RequireRole(entity.RoleOwner), m.Handler.Delete)

		registerLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil)
		events.POST("/:id/register", middleware.RequireRole(entity.RoleUser), registerLimiter, m.Handler.Register)
		events.DELETE("/:id/unregister", middleware.RequireRole(entity.RoleUser), registerLimiter, m.Handler.Unregister)
	}
}
