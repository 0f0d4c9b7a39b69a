package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumina-api/internal/middleware"
)

func TestRegisterExposesDownloadHeaders(t *testing.T) {
	app := fiber.New()
	middleware.Register(app, middleware.Config{})
	app.Get("/api/gallery", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/gallery", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://panel.lumina.test")
	resp, err := app.Test(req)
	require.NoError(t, err)

	require.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	require.Contains(t, resp.Header.Get(fiber.HeaderAccessControlExposeHeaders), "Content-Disposition")
}

func TestRegisterRestrictsConfiguredOrigins(t *testing.T) {
	app := fiber.New()
	middleware.Register(app, middleware.Config{AllowOrigins: "https://panel.lumina.test"})
	app.Get("/api/gallery", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/gallery", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://elsewhere.example")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
