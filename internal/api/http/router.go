package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/beacon-marketplace/internal/api/http/handlers"
	"github.com/spec-kit/beacon-marketplace/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Bindings       *handlers.BindingsHandler
	CheckIns       *handlers.CheckInsHandler
	Venues         *handlers.VenuesHandler
	Directory      *handlers.DirectoryHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/register", cfg.Auth.Register)
	app.Post("/auth/login", cfg.Auth.Login)

	// Reader submissions carry no bearer token; trust is anchored in the
	// device registration instead.
	app.Post("/checkins/reader", cfg.CheckIns.SubmitByReader)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireUser())

	protected.Post("/auth/logout", cfg.Auth.Logout)
	protected.Get("/auth/me", cfg.Auth.Me)

	protected.Post("/session/role/organization", cfg.Bindings.AssociateOrganization)
	protected.Post("/session/role/integration", cfg.Bindings.AssociateIntegration)
	protected.Delete("/session/role", cfg.Bindings.Dissociate)

	protected.Post("/checkins/self", cfg.CheckIns.SubmitSelf)
	protected.Get("/checkins", cfg.CheckIns.List)
	protected.Get("/checkins/:field/:major/:minor", cfg.CheckIns.Get)

	protected.Get("/venues/nearby", cfg.Venues.FindNearby)

	protected.Post("/organizations", cfg.Directory.CreateOrganization)
	protected.Get("/organizations/:id", cfg.Directory.GetOrganization)
	protected.Get("/organizations/:id/venues", cfg.Venues.ListByOrganization)

	// Mutations under an organization require the session to have taken on
	// an organization role first; membership authority is checked after.
	orgScoped := protected.Group("", auth.RequireBoundOrganization())
	orgScoped.Post("/organizations/:id/venues", cfg.Venues.Create)
	orgScoped.Post("/organizations/:id/memberships", cfg.Directory.GrantOrganizationMembership)

	protected.Post("/integrations", cfg.Directory.CreateIntegration)
	protected.Post("/integrations/:id/memberships", cfg.Directory.GrantIntegrationMembership)

	protected.Get("/memberships", cfg.Directory.ListMemberships)
	protected.Delete("/memberships/:id", cfg.Directory.RevokeMembership)

	protected.Post("/devices", cfg.Directory.RegisterDevice)
	protected.Get("/devices", cfg.Directory.ListDevices)
	protected.Delete("/devices/:serial", cfg.Directory.RemoveDevice)
}
