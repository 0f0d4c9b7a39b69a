package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/repository"
)

type stubActivityRecorder struct {
	entries []ActivityEntry
}

func (s *stubActivityRecorder) Record(_ context.Context, entry ActivityEntry) *models.ActivityLog {
	s.entries = append(s.entries, entry)
	return &models.ActivityLog{Action: entry.Action}
}

func (s *stubActivityRecorder) lastAction(t *testing.T) models.ActionKind {
	t.Helper()
	require.NotEmpty(t, s.entries)
	return s.entries[len(s.entries)-1].Action
}

const testJWTSecret = "auth-test-secret"

func setupAuthService(t *testing.T) (*gorm.DB, AuthService, *stubActivityRecorder) {
	t.Helper()

	db := openActivityTestDB(t, "auth_service")
	repo := repository.NewUserRepository(db)
	validate := validator.New(validator.WithRequiredStructEnabled())
	activity := &stubActivityRecorder{}

	svc := NewAuthService(repo, activity, validate, testJWTSecret, time.Hour, zerolog.Nop())

	return db, svc, activity
}

func seedUser(t *testing.T, db *gorm.DB, email, password, status string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Name: "Test User", Email: email, PasswordHash: string(hash), Role: "admin", Status: status}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	db, svc, activity := setupAuthService(t)
	user := seedUser(t, db, "ada@lumina.test", "correct-horse", models.UserStatusActive)

	response, err := svc.Login(context.Background(), dto.LoginRequest{Email: "Ada@Lumina.test", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, response.Token)
	require.Equal(t, user.Email, response.User.Email)
	require.Equal(t, models.ActionLogin, activity.lastAction(t))

	token, err := jwt.Parse(response.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "ada@lumina.test", claims["email"])
	require.Equal(t, "admin", claims["role"])

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NotNil(t, stored.LastLoginAt)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	_, svc, activity := setupAuthService(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ghost@lumina.test", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, activity.entries, 1)
	require.Equal(t, models.ActionLoginFailed, activity.entries[0].Action)
	require.Nil(t, activity.entries[0].Actor)
	require.Equal(t, "unknown email", activity.entries[0].Detail["reason"])
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	db, svc, activity := setupAuthService(t)
	user := seedUser(t, db, "ada@lumina.test", "correct-horse", models.UserStatusActive)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ada@lumina.test", Password: "battery-staple"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, activity.entries, 1)
	require.Equal(t, models.ActionLoginFailed, activity.entries[0].Action)
	require.NotNil(t, activity.entries[0].Actor)
	require.Equal(t, user.ID, activity.entries[0].Actor.ID)
}

func TestAuthServiceLoginSuspendedAccount(t *testing.T) {
	db, svc, activity := setupAuthService(t)
	seedUser(t, db, "ada@lumina.test", "correct-horse", models.UserStatusSuspended)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ada@lumina.test", Password: "correct-horse"})
	require.ErrorIs(t, err, ErrAccountSuspended)
	require.Equal(t, models.ActionLoginFailed, activity.lastAction(t))
}

func TestAuthServiceLoginRejectsInvalidPayload(t *testing.T) {
	_, svc, activity := setupAuthService(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)
	require.Empty(t, activity.entries)
}

func TestAuthServiceChangePassword(t *testing.T) {
	db, svc, activity := setupAuthService(t)
	user := seedUser(t, db, "ada@lumina.test", "correct-horse", models.UserStatusActive)
	actor := ActivityActor{ID: user.ID, Email: user.Email, Role: user.Role}

	err := svc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "a-new-password",
	})
	require.ErrorIs(t, err, ErrPasswordMismatch)

	err = svc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "a-new-password",
	})
	require.NoError(t, err)
	require.Equal(t, models.ActionPasswordChange, activity.lastAction(t))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("a-new-password")))
}

func TestAuthServiceLogout(t *testing.T) {
	_, svc, activity := setupAuthService(t)

	svc.Logout(context.Background(), ActivityActor{ID: 1, Email: "ada@lumina.test", Role: "admin"})
	require.Equal(t, models.ActionLogout, activity.lastAction(t))
}
