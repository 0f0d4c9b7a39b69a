package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/repository"
)

// GalleryService serves the public read-only gallery surface. Only
// published images are ever returned.
type GalleryService interface {
	List(ctx context.Context, req dto.GalleryListRequest) (dto.GalleryListResponse, error)
	Get(ctx context.Context, id uint) (dto.GalleryItemResponse, error)
}

type galleryService struct {
	repo   repository.ImageRepository
	logger zerolog.Logger
}

// NewGalleryService constructs the public gallery service.
func NewGalleryService(repo repository.ImageRepository, logger zerolog.Logger) GalleryService {
	return &galleryService{
		repo:   repo,
		logger: logger.With().Str("component", "gallery_service").Logger(),
	}
}

func (s *galleryService) List(ctx context.Context, req dto.GalleryListRequest) (dto.GalleryListResponse, error) {
	page := normalizePage(req.Page)
	pageSize := clampPageSize(req.PageSize)

	images, total, err := s.repo.List(ctx, repository.ImageFilter{
		Search:        req.Search,
		Tags:          sanitizeTags(req.Tags),
		CategoryID:    req.CategoryID,
		PublishedOnly: true,
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		return dto.GalleryListResponse{}, err
	}

	items := make([]dto.GalleryItemResponse, 0, len(images))
	for _, image := range images {
		items = append(items, toGalleryItem(image))
	}

	return dto.GalleryListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: calculateTotalPages(total, pageSize),
		},
	}, nil
}

func (s *galleryService) Get(ctx context.Context, id uint) (dto.GalleryItemResponse, error) {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil || !image.Published {
		return dto.GalleryItemResponse{}, ErrImageNotFound
	}
	return toGalleryItem(image), nil
}

func toGalleryItem(image models.Image) dto.GalleryItemResponse {
	item := dto.GalleryItemResponse{
		ID:        image.ID,
		Title:     image.Title,
		Caption:   image.Description,
		ImageURL:  image.URL,
		Tags:      image.Tags,
		CreatedAt: image.CreatedAt,
	}
	if image.Category != nil {
		item.Category = image.Category.Name
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item
}
