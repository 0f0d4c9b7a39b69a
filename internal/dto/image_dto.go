package dto

import (
	"time"

	"github.com/noah-isme/lumina-api/internal/models"
)

// AdminImageListRequest defines filters for listing images in the admin panel.
type AdminImageListRequest struct {
	Page       int
	PageSize   int
	Search     string
	Tags       []string
	CategoryID uint
}

// AdminImageUpdateRequest captures partial metadata updates for an image.
type AdminImageUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1"`
	CategoryID  *uint    `json:"category_id"`
	Published   *bool    `json:"published"`
}

// AdminBulkTagRequest applies tags to a set of images.
type AdminBulkTagRequest struct {
	ImageIDs []uint   `json:"image_ids" validate:"required,min=1,dive,gt=0"`
	Tags     []string `json:"tags" validate:"required,min=1,dive,min=1"`
}

// AdminBulkCategoryRequest moves a set of images into a category.
type AdminBulkCategoryRequest struct {
	ImageIDs   []uint `json:"image_ids" validate:"required,min=1,dive,gt=0"`
	CategoryID uint   `json:"category_id" validate:"required,gt=0"`
}

// AdminBulkDeleteRequest deletes a set of images.
type AdminBulkDeleteRequest struct {
	ImageIDs []uint `json:"image_ids" validate:"required,min=1,dive,gt=0"`
}

// AdminImageResponse serializes image data for admin clients.
type AdminImageResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	MimeType    string    `json:"mime_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Checksum    string    `json:"checksum"`
	Published   bool      `json:"published"`
	CategoryID  *uint     `json:"category_id"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AdminImageListResponse wraps a paginated image listing.
type AdminImageListResponse struct {
	Items      []AdminImageResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// BulkMutationResponse reports how many rows a bulk operation touched.
type BulkMutationResponse struct {
	Affected int64 `json:"affected"`
}

// CaptionSuggestionResponse carries an AI generated caption proposal.
type CaptionSuggestionResponse struct {
	Caption string `json:"caption"`
	Model   string `json:"model"`
}

// NewAdminImageResponse converts an image model into a DTO.
func NewAdminImageResponse(image models.Image) AdminImageResponse {
	response := AdminImageResponse{
		ID:          image.ID,
		Title:       image.Title,
		Description: image.Description,
		URL:         image.URL,
		MimeType:    image.MimeType,
		SizeBytes:   image.SizeBytes,
		Checksum:    image.Checksum,
		Published:   image.Published,
		CategoryID:  image.CategoryID,
		Tags:        append([]string(nil), image.Tags...),
		CreatedAt:   image.CreatedAt,
		UpdatedAt:   image.UpdatedAt,
	}
	if image.Category != nil {
		response.Category = image.Category.Name
	}
	return response
}
