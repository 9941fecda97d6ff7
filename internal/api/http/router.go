package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/neurodesk/helpdesk-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Tickets     *handlers.TicketsHandler
	Users       *handlers.UsersHandler
	Technicians *handlers.TechniciansHandler
	Skills      *handlers.SkillsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	// Static segments before /:id so fiber does not swallow them.
	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/all", cfg.Tickets.ListAll)
	tickets.Get("/by-skills", cfg.Tickets.ListBySkills)
	tickets.Get("/user/:userId", cfg.Tickets.ListByUser)
	tickets.Get("/technician/:technicianId", cfg.Tickets.ListByTechnician)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Put("/:id/close", cfg.Tickets.Close)
	tickets.Patch("/:id/reactivate", cfg.Tickets.Reactivate)
	tickets.Delete("/:id", cfg.Tickets.Cancel)
	tickets.Delete("/:id/permanent", cfg.Tickets.PermanentDelete)

	users := api.Group("/users")
	users.Post("/", cfg.Users.Create)
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Patch("/:id/reactivate", cfg.Users.Reactivate)
	users.Delete("/:id", cfg.Users.Delete)
	users.Delete("/:id/permanent", cfg.Users.PermanentDelete)

	technicians := api.Group("/technicians")
	technicians.Post("/", cfg.Technicians.Create)
	technicians.Get("/", cfg.Technicians.List)
	technicians.Get("/:id", cfg.Technicians.Get)
	technicians.Put("/:id", cfg.Technicians.Update)
	technicians.Patch("/:id/reactivate", cfg.Technicians.Reactivate)
	technicians.Delete("/:id", cfg.Technicians.Delete)
	technicians.Delete("/:id/permanent", cfg.Technicians.PermanentDelete)

	skills := api.Group("/skills")
	skills.Post("/", cfg.Skills.Create)
	skills.Get("/", cfg.Skills.List)
	skills.Get("/:id", cfg.Skills.Get)
	skills.Put("/:id", cfg.Skills.Update)
	skills.Patch("/:id/reactivate", cfg.Skills.Reactivate)
	skills.Delete("/:id", cfg.Skills.Delete)
	skills.Delete("/:id/permanent", cfg.Skills.PermanentDelete)
}
