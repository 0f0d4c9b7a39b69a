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

func setupAdminCategoryService(t *testing.T) (*gorm.DB, AdminCategoryService, *stubActivityRecorder) {
	t.Helper()

	db := openActivityTestDB(t, "admin_category")
	validate := validator.New(validator.WithRequiredStructEnabled())
	activity := &stubActivityRecorder{}

	svc := NewAdminCategoryService(
		repository.NewCategoryRepository(db),
		repository.NewImageRepository(db),
		activity,
		validate,
		zerolog.Nop(),
	)

	return db, svc, activity
}

func TestAdminCategoryServiceCreate(t *testing.T) {
	_, svc, activity := setupAdminCategoryService(t)

	response, err := svc.Create(context.Background(), dto.CategoryRequest{
		Name:        "  Urban Landscapes ",
		Description: "City scenes",
	}, ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, "Urban Landscapes", response.Name)
	require.Equal(t, "urban-landscapes", response.Slug)
	require.Zero(t, response.ImageCount)

	require.Equal(t, models.ActionCategoryCreate, activity.lastAction(t))
	require.Equal(t, "Urban Landscapes", activity.entries[0].Detail["name"])
}

func TestAdminCategoryServiceDeleteBlockedWhenInUse(t *testing.T) {
	db, svc, activity := setupAdminCategoryService(t)

	category := models.Category{Slug: "nature", Name: "Nature"}
	require.NoError(t, db.Create(&category).Error)
	image := models.Image{Title: "forest", URL: "https://cdn.test/forest.jpg", CategoryID: &category.ID}
	require.NoError(t, db.Create(&image).Error)

	err := svc.Delete(context.Background(), category.ID, ActivityActor{ID: 1})
	require.ErrorIs(t, err, ErrCategoryInUse)
	require.Empty(t, activity.entries)

	require.NoError(t, db.Delete(&models.Image{}, image.ID).Error)
	require.NoError(t, svc.Delete(context.Background(), category.ID, ActivityActor{ID: 1}))
	require.Equal(t, models.ActionCategoryDelete, activity.lastAction(t))
}

func TestAdminCategoryServiceUpdateNotFound(t *testing.T) {
	_, svc, _ := setupAdminCategoryService(t)

	_, err := svc.Update(context.Background(), 42, dto.CategoryRequest{Name: "Missing"}, ActivityActor{ID: 1})
	require.ErrorIs(t, err, ErrCategoryNotFound)
}
