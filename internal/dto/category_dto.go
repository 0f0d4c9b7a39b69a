package dto

import (
	"time"

	"github.com/noah-isme/lumina-api/internal/models"
)

// CategoryRequest captures create/update payloads for categories.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// CategoryResponse serializes a category.
type CategoryResponse struct {
	ID          uint      `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageCount  int64     `json:"image_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategoryResponse converts a category model into a DTO.
func NewCategoryResponse(category models.Category, imageCount int64) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Slug:        category.Slug,
		Name:        category.Name,
		Description: category.Description,
		ImageCount:  imageCount,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}
