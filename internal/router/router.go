package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aulagest/aulagest-api/internal/config"
	"github.com/aulagest/aulagest-api/internal/handler"
	"github.com/aulagest/aulagest-api/internal/middleware"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	UserHandler       *handler.UserHandler
	GroupHandler      *handler.GroupHandler
	ModuleHandler     *handler.ModuleHandler
	PracticeHandler   *handler.PracticeHandler
	RubricHandler     *handler.RubricHandler
	SubmissionHandler *handler.SubmissionHandler
	GradeHandler      *handler.GradeHandler
	ExportHandler     *handler.ExportHandler
	ActivityHandler   *handler.ActivityHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.Register(users)
	}

	if deps.GroupHandler != nil {
		groups := api.Group("/groups", jwtMiddleware)
		deps.GroupHandler.Register(groups)
	}

	if deps.ModuleHandler != nil {
		modules := api.Group("/modules", jwtMiddleware)
		deps.ModuleHandler.Register(modules)
	}

	if deps.PracticeHandler != nil {
		practices := api.Group("/practices", jwtMiddleware)
		deps.PracticeHandler.Register(practices)
	}

	if deps.RubricHandler != nil {
		rubrics := api.Group("/rubrics", jwtMiddleware)
		deps.RubricHandler.Register(rubrics)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.GradeHandler != nil {
		grades := api.Group("/grades", jwtMiddleware, middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.GradeHandler.Register(grades)
	}

	if deps.ExportHandler != nil {
		exports := api.Group("/exports", jwtMiddleware, middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.ExportHandler.Register(exports)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.ActivityHandler.Register(activity)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.SeedHandler.Register(seed)
	}
}
