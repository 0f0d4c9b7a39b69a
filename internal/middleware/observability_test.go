package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumina-api/internal/middleware"
)

func newObservedApp(buf *bytes.Buffer) *fiber.App {
	logger := zerolog.New(buf)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/admin") {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", "admin")
			c.Locals("user_email", "ada@lumina.test")
		}
		return c.Next()
	})
	app.Use(middleware.Observability(logger))
	app.Get("/api/admin/images", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/gallery", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestObservabilityLogsAdminRequestWithActor(t *testing.T) {
	var buf bytes.Buffer
	app := newObservedApp(&buf)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/images", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	entry := lastLogLine(t, &buf)
	require.Equal(t, "admin", entry["surface"])
	require.Equal(t, "ada@lumina.test", entry["actor"])
	require.Equal(t, http.MethodGet, entry["method"])
	require.Equal(t, float64(fiber.StatusOK), entry["status"])
	require.NotEmpty(t, entry["latency_bucket"])
}

func TestObservabilityLogsGallerySurfaceWithoutActor(t *testing.T) {
	var buf bytes.Buffer
	app := newObservedApp(&buf)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/gallery", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	entry := lastLogLine(t, &buf)
	require.Equal(t, "gallery", entry["surface"])
	_, hasActor := entry["actor"]
	require.False(t, hasActor)
}

func TestObservabilitySkipsNonAPIPaths(t *testing.T) {
	var buf bytes.Buffer
	app := newObservedApp(&buf)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Empty(t, strings.TrimSpace(buf.String()))
}
