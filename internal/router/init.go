package router

import (
	"github.com/eventsphere/eventsphere-api/internal/application"
	"github.com/eventsphere/eventsphere-api/internal/container"
	pginfra "github.com/eventsphere/eventsphere-api/internal/infrastructure/postgres"
	handlers "github.com/eventsphere/eventsphere-api/internal/interface/http"
	"github.com/eventsphere/eventsphere-api/internal/router/modules"
	"github.com/eventsphere/eventsphere-api/pkg/storage"
)

type Deps struct {
	Auth     *application.AuthService
	Events   *application.EventService
	Profiles *application.ProfileService

	AuthHandler    *handlers.AuthHandler
	EventHandler   *handlers.EventHandler
	ProfileHandler *handlers.ProfileHandler
}

func buildDeps() Deps {
	cfg := container.GetConfig()
	log := container.GetLogger()
	pool := container.GetPGPool()

	images := &storage.ImageStore{
		Client: container.GetGCS(),
		Bucket: cfg.GCSBucket,
		Logger: log,
	}

	var pub application.Publisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}

	authSvc := application.NewAuthService(pginfra.NewUserRepository(pool), log)
	eventSvc := application.NewEventService(
		pginfra.NewEventRepository(pool),
		images,
		log,
		nil,
		pub,
		container.GetES(),
		cfg.ESEventsIndex,
	)
	profileSvc := application.NewProfileService(pginfra.NewProfileRepository(pool), images, log)

	return Deps{
		Auth:     authSvc,
		Events:   eventSvc,
		Profiles: profileSvc,

		AuthHandler:    handlers.NewAuthHandler(authSvc, container.GetJWT(), log, cfg.CookieDomain, cfg.CookieSecure),
		EventHandler:   handlers.NewEventHandler(eventSvc, log),
		ProfileHandler: handlers.NewProfileHandler(profileSvc, log),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()

	r.Add(modules.NewAuthModule(deps.AuthHandler, deps.Auth))
	r.Add(modules.NewEventModule(deps.EventHandler, deps.Auth))
	r.Add(modules.NewProfileModule(deps.ProfileHandler, deps.Auth))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
