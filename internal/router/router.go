package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/studyboard-api/internal/config"
	"github.com/noah-isme/studyboard-api/internal/handler"
	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SessionHandler          *handler.SessionHandler
	SeedHandler             *handler.SeedHandler
	DirectoryHandler        *handler.DirectoryHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	PredictionHandler       *handler.PredictionHandler
	SubmissionHandler       *handler.SubmissionHandler
	TeacherDashboardHandler *handler.TeacherDashboardHandler
	GradeHandler            *handler.GradeHandler
	MessageHandler          *handler.MessageHandler
	StudentViewHandler      *handler.StudentViewHandler
	TeacherViewHandler      *handler.TeacherViewHandler
	ConversationViewHandler *handler.ConversationViewHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Public routes go first so the authentication middleware below never runs for them.
	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api)
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}

	guard := handler.Guard(handler.OpenGuard)
	if cfg.AuthRequired {
		guard = middleware.WithAuth
	}

	secured := api.Group("", middleware.Authenticate(cfg.JWTSecret, cfg.AuthRequired))
	views := secured.Group("/views")

	if deps.DirectoryHandler != nil {
		deps.DirectoryHandler.Register(secured, guard)
	}
	if deps.StudentDashboardHandler != nil {
		deps.StudentDashboardHandler.Register(secured, guard)
	}
	if deps.PredictionHandler != nil {
		deps.PredictionHandler.Register(secured, guard)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(secured, guard)
	}
	if deps.TeacherDashboardHandler != nil {
		deps.TeacherDashboardHandler.Register(secured, guard)
	}
	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(secured, guard)
	}
	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(secured, guard)
	}
	if deps.StudentViewHandler != nil {
		deps.StudentViewHandler.Register(views, guard)
	}
	if deps.TeacherViewHandler != nil {
		deps.TeacherViewHandler.Register(views, guard)
	}
	if deps.ConversationViewHandler != nil {
		deps.ConversationViewHandler.Register(views, guard)
	}
}
