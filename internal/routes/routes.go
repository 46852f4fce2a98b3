package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/shelfwise/auth-backend/internal/auth"
	"github.com/shelfwise/auth-backend/internal/config"
	"github.com/shelfwise/auth-backend/internal/handlers"
	"github.com/shelfwise/auth-backend/internal/middleware"
	"github.com/shelfwise/auth-backend/internal/models"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	gate *auth.Gate,
	authHandler *handlers.AuthHandler,
	roleHandler *handlers.RoleHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Credential endpoints get a stricter limit: 10 req/min per IP
	authGroup := api.Group("/auth")
	authGroup.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	// Authenticated-only; revoke needs a currently-valid access token.
	authGroup.Delete("/revoke", middleware.Protected(cfg), authHandler.Revoke)
	authGroup.Get("/me", middleware.Protected(cfg), authHandler.Me)

	// Role catalog and assignment are admin-only.
	adminOnly := middleware.RequireRoles(gate, models.RoleAdmin)

	roles := api.Group("/roles", adminOnly)
	roles.Get("/", roleHandler.List)
	roles.Post("/", roleHandler.Create)
	roles.Get("/:id", roleHandler.Get)
	roles.Put("/:id", roleHandler.Update)
	roles.Delete("/:id", roleHandler.Delete)

	userRoles := api.Group("/users/:id/roles", adminOnly)
	userRoles.Get("/", roleHandler.RolesForUser)
	userRoles.Post("/", roleHandler.Assign)
	userRoles.Delete("/:role", roleHandler.Remove)
	userRoles.Get("/:role", roleHandler.IsInRole)
}
