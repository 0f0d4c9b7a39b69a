package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumina-api/internal/middleware"
)

func newGuardedApp(role string, locals map[string]interface{}) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		for key, value := range locals {
			c.Locals(key, value)
		}
		return c.Next()
	})
	app.Get("/", middleware.RequireRole(role), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func perform(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return resp
}

func TestRequireRoleEditorAllowsEditor(t *testing.T) {
	app := newGuardedApp(middleware.AuthRoleEditor, map[string]interface{}{
		"user_id":   uint(10),
		"user_role": "Editor",
	})

	resp := perform(t, app)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRequireRoleEditorAllowsAdmin(t *testing.T) {
	app := newGuardedApp(middleware.AuthRoleEditor, map[string]interface{}{
		"user_id":   uint(1),
		"user_role": "admin",
	})

	resp := perform(t, app)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRequireRoleAdminDeniesEditor(t *testing.T) {
	app := newGuardedApp(middleware.AuthRoleAdmin, map[string]interface{}{
		"user_id":   uint(10),
		"user_role": "editor",
	})

	resp := perform(t, app)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRejectsAnonymous(t *testing.T) {
	app := newGuardedApp(middleware.AuthRoleEditor, nil)

	resp := perform(t, app)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleAnyAllowsAnyAuthenticatedUser(t *testing.T) {
	app := newGuardedApp(middleware.AuthRoleAny, map[string]interface{}{
		"user_id":   uint(10),
		"user_role": "editor",
	})

	resp := perform(t, app)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
