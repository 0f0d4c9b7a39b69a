package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/lumina-api/internal/models"
)

// ImageFilter narrows image listing queries.
type ImageFilter struct {
	Search        string
	Tags          []string
	CategoryID    *uint
	PublishedOnly bool
	Page          int
	PageSize      int
}

// ImageRepository manages image persistence operations.
type ImageRepository interface {
	List(ctx context.Context, filter ImageFilter) ([]models.Image, int64, error)
	GetByID(ctx context.Context, id uint) (models.Image, error)
	Create(ctx context.Context, image *models.Image) error
	Update(ctx context.Context, image *models.Image) error
	Delete(ctx context.Context, id uint) error
	ListByIDs(ctx context.Context, ids []uint) ([]models.Image, error)
	UpdateCategoryByIDs(ctx context.Context, ids []uint, categoryID uint) (int64, error)
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository constructs an image repository implementation.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) List(ctx context.Context, filter ImageFilter) ([]models.Image, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Image{})

	for _, tag := range filter.Tags {
		trimmed := strings.TrimSpace(strings.ToLower(tag))
		if trimmed == "" {
			continue
		}
		like := "%|" + trimmed + "|%"
		query = query.Where("tags LIKE ?", like)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var images []models.Image
	if err := query.Preload("Category").Order("created_at DESC").Find(&images).Error; err != nil {
		return nil, 0, err
	}

	return images, total, nil
}

func (r *imageRepository) GetByID(ctx context.Context, id uint) (models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).Preload("Category").First(&image, id).Error
	return image, err
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *imageRepository) Update(ctx context.Context, image *models.Image) error {
	return r.db.WithContext(ctx).Save(image).Error
}

func (r *imageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Image{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *imageRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Image, error) {
	var images []models.Image
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&images).Error
	return images, err
}

func (r *imageRepository) UpdateCategoryByIDs(ctx context.Context, ids []uint, categoryID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("id IN ?", ids).
		Update("category_id", categoryID)
	return result.RowsAffected, result.Error
}

func (r *imageRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Image{}, ids)
	return result.RowsAffected, result.Error
}

func (r *imageRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}
