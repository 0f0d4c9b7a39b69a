package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lumina-api/internal/config"
	"github.com/noah-isme/lumina-api/internal/handler"
	"github.com/noah-isme/lumina-api/internal/middleware"
	"github.com/noah-isme/lumina-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler           *handler.AuthHandler
	GalleryHandler        *handler.GalleryHandler
	ActivityHandler       *handler.AdminActivityHandler
	ActivityStreamHandler *handler.ActivityStreamHandler
	ImageHandler          *handler.AdminImageHandler
	CategoryHandler       *handler.AdminCategoryHandler
	UserHandler           *handler.AdminUserHandler
	SettingsHandler       *handler.AdminSettingsHandler
	JWTMiddleware         fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public surface
	if deps.GalleryHandler != nil {
		deps.GalleryHandler.Register(api.Group("/gallery"))
	}
	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", jwtMiddleware))
	}

	// Admin surface. Editors manage content; user accounts, settings and
	// the activity log stay admin only.
	admin := api.Group("/admin", jwtMiddleware)

	editor := admin.Group("", middleware.RequireRole(middleware.AuthRoleEditor))
	if deps.ImageHandler != nil {
		deps.ImageHandler.Register(editor.Group("/images"))
	}
	if deps.CategoryHandler != nil {
		deps.CategoryHandler.Register(editor.Group("/categories"))
	}

	adminOnly := admin.Group("", middleware.RequireRole(middleware.AuthRoleAdmin))
	if deps.UserHandler != nil {
		deps.UserHandler.Register(adminOnly.Group("/users"))
	}
	if deps.SettingsHandler != nil {
		deps.SettingsHandler.Register(adminOnly.Group("/settings"))
	}
	if deps.ActivityHandler != nil {
		activities := adminOnly.Group("/activities")
		deps.ActivityHandler.Register(activities)
		if deps.ActivityStreamHandler != nil {
			deps.ActivityStreamHandler.Register(activities)
		}
	}
}
