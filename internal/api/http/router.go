package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Prefix         string
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Ratings        *handlers.RatingsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// ServerConfig describes the fiber application.
type ServerConfig struct {
	AppName        string
	RequestTimeout time.Duration
	CORSOrigins    string
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	Routes         RouteConfig
}

// NewServer builds the fiber application with middlewares and routes.
func NewServer(cfg ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		Immutable:    true,
		ErrorHandler: ErrorHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	RegisterMiddlewares(app, cfg.Logger, cfg.Metrics, cfg.RequestTimeout, cfg.CORSOrigins)
	RegisterRoutes(app, cfg.Routes)
	return app
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group(cfg.Prefix)
	authenticated := cfg.AuthMiddleware.Handle
	userOnly := cfg.AuthMiddleware.RequireRole(domain.RoleUser)
	technicianOnly := cfg.AuthMiddleware.RequireRole(domain.RoleTechnician)

	users := api.Group("/users")
	users.Post("/", cfg.Users.Create)
	users.Get("/", authenticated, cfg.Users.List)
	users.Get("/me", authenticated, cfg.Users.Me)
	users.Get("/:id", authenticated, cfg.Users.Get)
	users.Put("/:id", authenticated, cfg.Users.Update)
	users.Delete("/:id", authenticated, cfg.Users.Delete)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/verify-email/request/:id", cfg.Auth.RequestVerification)
	authGroup.Post("/verify-email/confirm/:id", cfg.Auth.ConfirmVerification)

	tickets := api.Group("/tickets")
	tickets.Post("/", userOnly, cfg.Tickets.CreateTicket)
	tickets.Get("/", authenticated, cfg.Tickets.ListTickets)
	tickets.Patch("/accept/:id", technicianOnly, cfg.Tickets.AcceptTicket)
	tickets.Patch("/resolve/:id", technicianOnly, cfg.Tickets.ResolveTicket)
	tickets.Get("/:id", authenticated, cfg.Tickets.GetTicket)
	tickets.Delete("/:id", userOnly, cfg.Tickets.DeleteTicket)

	ratings := api.Group("/ratings")
	ratings.Get("/technician/:id", userOnly, cfg.Ratings.ListByTechnician)
	ratings.Get("/ticket/:id", authenticated, cfg.Ratings.GetRatingByTicket)
	ratings.Get("/:id", authenticated, cfg.Ratings.GetRating)
	ratings.Post("/:id", userOnly, cfg.Ratings.CreateRating)
	ratings.Delete("/:id", userOnly, cfg.Ratings.DeleteRating)
}
