package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Pages          *handlers.PagesHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Health         *handlers.HealthHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. The auth pages are reachable both at
// their short paths and under /auth, matching the links the templates emit.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/", cfg.Pages.Home)

	for _, path := range []string{"/login", "/auth/login"} {
		app.Get(path, cfg.Pages.LoginPage)
		app.Post(path, cfg.Auth.Login)
	}
	for _, path := range []string{"/signup", "/auth/signup"} {
		app.Get(path, cfg.Pages.SignupPage)
		app.Post(path, cfg.Auth.Signup)
	}
	app.Get("/logout", cfg.Auth.Logout)

	app.Get("/dashboard", cfg.AuthMiddleware.RequireUser, cfg.Pages.Dashboard)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.RequireUser)
	tickets.Get("/", cfg.Pages.TicketsPage)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/search", cfg.Tickets.Search)
	tickets.Get("/get/:id", cfg.Tickets.Get)
	tickets.Post("/create", cfg.Tickets.Create)
	tickets.Post("/update", cfg.Tickets.Update)
	tickets.Post("/delete", cfg.Tickets.Delete)

	app.Use(cfg.Pages.NotFound)
}
