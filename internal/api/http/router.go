package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-access/internal/api/http/handlers"
	"github.com/spec-kit/gym-access/internal/auth"
)

// GymIDParam is the route parameter carrying the tenant id.
const GymIDParam = "gymId"

// NewApp builds the Fiber app. Routing is case-sensitive so a route only
// matches paths spelled the way the access gate compares them.
func NewApp(appName string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:       appName,
		CaseSensitive: true,
	})
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	GymAuth        *handlers.GymAuthHandler
	GymAccess      *handlers.GymAccessHandler
	Admin          *handlers.AdminHandler
	Resolver       *auth.Resolver
	Gate           *auth.AccessGate
	TenantBoundary *auth.TenantBoundary
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.Users.Logout)
	authGroup.Get("/me", cfg.Users.Me)
	api.Get("/account", auth.RequireUser(cfg.Resolver), cfg.Users.Account)

	gymAuth := api.Group("/gym/auth")
	gymAuth.Post("/login", cfg.GymAuth.Login)
	gymAuth.Post("/logout", cfg.GymAuth.Logout)
	gymAuth.Get("/me", cfg.GymAuth.Me)

	gym := api.Group("/gym/:" + GymIDParam)
	gym.Post("/verify", cfg.GymAccess.Verify)
	gym.Delete("/verify", cfg.GymAccess.Revoke)
	gym.Put("/password", auth.RequireGymPrincipal(cfg.Resolver, GymIDParam), cfg.GymAccess.ChangePassword)

	// Static admin pages are registered before the parameterised tenant routes.
	admin := app.Group("/admin", cfg.Gate.Handle)
	admin.Get("/gym/select", cfg.Admin.Select)
	admin.Get("/gym/login", cfg.Admin.Login)
	admin.Get("/gym/:"+GymIDParam+"/verify", cfg.Admin.Verify)
	admin.Get("/gym/:"+GymIDParam, cfg.TenantBoundary.Handle, cfg.Admin.Dashboard)
	admin.Get("/gym/:"+GymIDParam+"/*", cfg.TenantBoundary.Handle, cfg.Admin.Dashboard)
	admin.Get("/*", cfg.Admin.Overview)
}
