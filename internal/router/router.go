package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/proctorly/exam-api/internal/config"
	"github.com/proctorly/exam-api/internal/handler"
	"github.com/proctorly/exam-api/internal/middleware"
	"github.com/proctorly/exam-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	ExamHandler    *handler.ExamHandler
	AttemptHandler *handler.AttemptHandler
	TimerHandler   *handler.TimerHandler
	RosterHandler  *handler.RosterHandler
	SeedHandler    *handler.SeedHandler
	SessionGuard   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	sessionGuard := deps.SessionGuard
	if sessionGuard == nil {
		sessionGuard = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), sessionGuard)
	}

	if deps.ExamHandler != nil {
		exams := api.Group("/exams", sessionGuard, middleware.RateLimit("exams", cfg.RateLimitMax, cfg.RateLimitWindow))
		deps.ExamHandler.Register(exams)
	}

	if deps.AttemptHandler != nil {
		attempts := api.Group("/attempts", sessionGuard, middleware.RateLimit("attempts", cfg.RateLimitMax, cfg.RateLimitWindow))
		deps.AttemptHandler.Register(attempts)

		if deps.TimerHandler != nil {
			deps.TimerHandler.Register(attempts)
		}
	}

	if deps.RosterHandler != nil {
		roster := api.Group("/roster")
		deps.RosterHandler.Register(roster)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}
