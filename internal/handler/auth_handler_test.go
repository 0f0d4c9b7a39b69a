package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/handler"
	"github.com/noah-isme/lumina-api/internal/service"
)

type mockAuthService struct {
	loginResp  dto.LoginResponse
	loginErr   error
	changeErr  error
	logouts    []service.ActivityActor
	lastChange dto.ChangePasswordRequest
}

func (m *mockAuthService) Login(_ context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if m.loginErr != nil {
		return dto.LoginResponse{}, m.loginErr
	}
	return m.loginResp, nil
}

func (m *mockAuthService) Logout(_ context.Context, actor service.ActivityActor) {
	m.logouts = append(m.logouts, actor)
}

func (m *mockAuthService) ChangePassword(_ context.Context, _ service.ActivityActor, payload dto.ChangePasswordRequest) error {
	m.lastChange = payload
	return m.changeErr
}

func newAuthApp(svc *mockAuthService) *fiber.App {
	app := fiber.New()
	authHandler := handler.NewAuthHandler(svc, zerolog.New(io.Discard))
	group := app.Group("/api/auth")
	authHandler.Register(group)
	authHandler.RegisterProtected(group.Group("", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(5))
		c.Locals("user_role", "admin")
		c.Locals("user_email", "ada@lumina.test")
		return c.Next()
	}))
	return app
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	svc := &mockAuthService{loginResp: dto.LoginResponse{
		Token: "token-123",
		User:  dto.AdminUserResponse{ID: 5, Email: "ada@lumina.test"},
	}}
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ada@lumina.test","password":"secret"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "token-123", body.Data.Token)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	app := newAuthApp(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ada@lumina.test","password":"wrong"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_LoginSuspended(t *testing.T) {
	app := newAuthApp(&mockAuthService{loginErr: service.ErrAccountSuspended})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ada@lumina.test","password":"secret"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuthHandler_LogoutUsesRequestActor(t *testing.T) {
	svc := &mockAuthService{}
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, svc.logouts, 1)
	require.Equal(t, uint(5), svc.logouts[0].ID)
	require.Equal(t, "ada@lumina.test", svc.logouts[0].Email)
}

func TestAuthHandler_ChangePasswordMismatch(t *testing.T) {
	app := newAuthApp(&mockAuthService{changeErr: service.ErrPasswordMismatch})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/password",
		strings.NewReader(`{"current_password":"old","new_password":"new-password-1"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
