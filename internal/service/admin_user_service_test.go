package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/repository"
)

func setupAdminUserService(t *testing.T) (*gorm.DB, AdminUserService, *stubActivityRecorder) {
	t.Helper()

	db := openActivityTestDB(t, "admin_user")
	validate := validator.New(validator.WithRequiredStructEnabled())
	activity := &stubActivityRecorder{}

	svc := NewAdminUserService(repository.NewUserRepository(db), activity, validate, zerolog.Nop())

	return db, svc, activity
}

func TestAdminUserServiceCreate(t *testing.T) {
	db, svc, activity := setupAdminUserService(t)

	response, err := svc.Create(context.Background(), dto.AdminUserCreateRequest{
		Name:     "Ben",
		Email:    "Ben@Lumina.Test",
		Password: "long-enough-pass",
		Role:     models.UserRoleEditor,
	}, ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, "ben@lumina.test", response.Email)
	require.Equal(t, models.UserStatusActive, response.Status)
	require.Equal(t, models.ActionUserCreate, activity.lastAction(t))

	var stored models.User
	require.NoError(t, db.First(&stored, response.ID).Error)
	require.NotEqual(t, "long-enough-pass", stored.PasswordHash)

	_, err = svc.Create(context.Background(), dto.AdminUserCreateRequest{
		Name:     "Ben Again",
		Email:    "ben@lumina.test",
		Password: "long-enough-pass",
		Role:     models.UserRoleEditor,
	}, ActivityActor{ID: 1})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAdminUserServiceCreateRejectsBadRole(t *testing.T) {
	_, svc, activity := setupAdminUserService(t)

	_, err := svc.Create(context.Background(), dto.AdminUserCreateRequest{
		Name:     "Eve",
		Email:    "eve@lumina.test",
		Password: "long-enough-pass",
		Role:     "superuser",
	}, ActivityActor{ID: 1})
	require.Error(t, err)
	require.Empty(t, activity.entries)
}

func TestAdminUserServiceUpdateEmailConflict(t *testing.T) {
	db, svc, _ := setupAdminUserService(t)

	first := models.User{Name: "Ada", Email: "ada@lumina.test", PasswordHash: "x", Role: "admin", Status: models.UserStatusActive}
	second := models.User{Name: "Ben", Email: "ben@lumina.test", PasswordHash: "x", Role: "editor", Status: models.UserStatusActive}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	taken := "ada@lumina.test"
	_, err := svc.Update(context.Background(), second.ID, dto.AdminUserUpdateRequest{Email: &taken}, ActivityActor{ID: first.ID})
	require.ErrorIs(t, err, ErrEmailTaken)

	suspended := models.UserStatusSuspended
	response, err := svc.Update(context.Background(), second.ID, dto.AdminUserUpdateRequest{Status: &suspended}, ActivityActor{ID: first.ID})
	require.NoError(t, err)
	require.Equal(t, models.UserStatusSuspended, response.Status)
}

func TestAdminUserServiceDeleteGuards(t *testing.T) {
	db, svc, activity := setupAdminUserService(t)

	user := models.User{Name: "Ben", Email: "ben@lumina.test", PasswordHash: "x", Role: "editor", Status: models.UserStatusActive}
	require.NoError(t, db.Create(&user).Error)

	require.ErrorIs(t, svc.Delete(context.Background(), user.ID, ActivityActor{ID: user.ID}), ErrSelfDeletion)
	require.ErrorIs(t, svc.Delete(context.Background(), 999, ActivityActor{ID: 1}), ErrUserNotFound)

	require.NoError(t, svc.Delete(context.Background(), user.ID, ActivityActor{ID: 1}))
	require.Equal(t, models.ActionUserDelete, activity.lastAction(t))
	require.Equal(t, "ben@lumina.test", activity.entries[0].Detail["user_email"])
}
