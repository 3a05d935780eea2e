package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/pbl-go-api/internal/config"
	"github.com/noah-isme/pbl-go-api/internal/handler"
	"github.com/noah-isme/pbl-go-api/internal/middleware"
	"github.com/noah-isme/pbl-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AchievementHandler    *handler.AchievementHandler
	RubricHandler         *handler.RubricHandler
	GradingHandler        *handler.GradingHandler
	ProjectHandler        *handler.ProjectHandler
	PendingActionsHandler *handler.PendingActionsHandler
	ActivityHandler       *handler.ActivityHandler
	SeedHandler           *handler.SeedHandler
	Health                handler.HealthDependencies
	JWTMiddleware         fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Health))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AchievementHandler != nil {
		deps.AchievementHandler.Register(api.Group("/achievements", jwtMiddleware))
	}

	if deps.RubricHandler != nil || deps.ProjectHandler != nil {
		projects := api.Group("/projects", jwtMiddleware)
		if deps.RubricHandler != nil {
			deps.RubricHandler.Register(projects)
		}
		if deps.ProjectHandler != nil {
			deps.ProjectHandler.Register(projects)
		}
	}

	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(api.Group("/submissions", jwtMiddleware))
	}

	if deps.PendingActionsHandler != nil {
		deps.PendingActionsHandler.Register(api.Group("/teachers", jwtMiddleware, middleware.RequireRole(middleware.RoleTeacher)))
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity", jwtMiddleware))
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}
}
