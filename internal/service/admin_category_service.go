package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/repository"
)

// Category service error sentinels.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category still contains images")
)

// AdminCategoryService exposes category management use cases.
type AdminCategoryService interface {
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Create(ctx context.Context, payload dto.CategoryRequest, actor ActivityActor) (dto.CategoryResponse, error)
	Update(ctx context.Context, id uint, payload dto.CategoryRequest, actor ActivityActor) (dto.CategoryResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
}

type adminCategoryService struct {
	repo      repository.CategoryRepository
	images    repository.ImageRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAdminCategoryService constructs the category admin service.
func NewAdminCategoryService(repo repository.CategoryRepository, images repository.ImageRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) AdminCategoryService {
	return &adminCategoryService{
		repo:      repo,
		images:    images,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "admin_category_service").Logger(),
	}
}

func (s *adminCategoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		count, err := s.images.CountByCategory(ctx, category.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewCategoryResponse(category, count))
	}

	return responses, nil
}

func (s *adminCategoryService) Create(ctx context.Context, payload dto.CategoryRequest, actor ActivityActor) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CategoryResponse{}, err
	}

	category := models.Category{
		Slug:        generateSlug(payload.Name),
		Name:        strings.TrimSpace(payload.Name),
		Description: strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
	}

	if err := s.repo.Create(ctx, &category); err != nil {
		return dto.CategoryResponse{}, err
	}

	s.recordActivity(ctx, actor, models.ActionCategoryCreate, category.Name)
	return dto.NewCategoryResponse(category, 0), nil
}

func (s *adminCategoryService) Update(ctx context.Context, id uint, payload dto.CategoryRequest, actor ActivityActor) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CategoryResponse{}, err
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoryResponse{}, ErrCategoryNotFound
		}
		return dto.CategoryResponse{}, err
	}

	category.Name = strings.TrimSpace(payload.Name)
	category.Description = strings.TrimSpace(s.sanitizer.Sanitize(payload.Description))

	if err := s.repo.Update(ctx, &category); err != nil {
		return dto.CategoryResponse{}, err
	}

	count, err := s.images.CountByCategory(ctx, category.ID)
	if err != nil {
		return dto.CategoryResponse{}, err
	}

	s.recordActivity(ctx, actor, models.ActionCategoryUpdate, category.Name)
	return dto.NewCategoryResponse(category, count), nil
}

func (s *adminCategoryService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	count, err := s.images.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	s.recordActivity(ctx, actor, models.ActionCategoryDelete, category.Name)
	return nil
}

func (s *adminCategoryService) recordActivity(ctx context.Context, actor ActivityActor, action models.ActionKind, name string) {
	s.activity.Record(ctx, ActivityEntry{
		Action: action,
		Detail: map[string]interface{}{"name": name},
		Actor:  &actor,
	})
}
