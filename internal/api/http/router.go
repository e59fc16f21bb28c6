package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/embed-login/internal/api/http/handlers"
	"github.com/spec-kit/embed-login/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Metrics  *handlers.MetricsHandler
	Auth     *handlers.AuthHandler
	Vendor   *handlers.VendorHandler
	Sessions *handlers.SessionHandler
	Pages    *handlers.PagesHandler
	// BearerGuard protects the /api routes of the single-page app.
	BearerGuard *auth.Guard
	// SessionGuard protects the /ssr routes of the server-rendered site.
	SessionGuard *auth.Guard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/debug/metrics", cfg.Metrics.Snapshot)

	bearer := cfg.BearerGuard
	api := app.Group("/api")
	api.Post("/auth", bearer.RequireGuest(auth.StyleAPI), cfg.Auth.Login)
	api.Get("/auth", bearer.OptionalAuth(), cfg.Auth.Status)
	api.Get("/auth/refresh", bearer.RequireAuth(auth.StyleAPI), cfg.Auth.Refresh)
	api.Delete("/auth", cfg.Auth.Logout)
	api.Get("/me", bearer.RequireAuth(auth.StyleAPI), cfg.Auth.Me)

	api.Get("/divinci/get-jwt", bearer.RequireAuth(auth.StyleAPI), cfg.Vendor.GetJWT)
	api.Get("/divinci/release", cfg.Vendor.Release)
	api.Get("/debug/tokens", bearer.OptionalAuth(), cfg.Vendor.DebugTokens)
	api.Post("/debug/validate", bearer.RequireAuth(auth.StyleAPI), cfg.Vendor.Validate)

	sessions := cfg.SessionGuard
	ssr := app.Group("/ssr")
	ssr.Post("/auth/login", sessions.RequireGuest(auth.StylePage), cfg.Sessions.Login)
	ssr.Post("/auth/logout", cfg.Sessions.Logout)
	ssr.Get("/api/me", sessions.RequireAuth(auth.StyleAPI), cfg.Sessions.Me)
	ssr.Get("/api/get-jwt", sessions.RequireAuth(auth.StyleAPI), cfg.Sessions.GetJWT)

	ssr.Get("/", sessions.OptionalAuth(), cfg.Pages.Home)
	ssr.Get("/login", sessions.RequireGuest(auth.StylePage), cfg.Pages.Login)
	ssr.Get("/example", sessions.OptionalAuth(), cfg.Pages.Example)
	ssr.Get("/protected", sessions.RequireAuth(auth.StylePage), cfg.Pages.Protected)
}
