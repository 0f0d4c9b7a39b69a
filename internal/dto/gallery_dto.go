package dto

import "time"

// GalleryListRequest filters the public gallery listing.
type GalleryListRequest struct {
	Page       int      `query:"page"`
	PageSize   int      `query:"page_size"`
	Search     string   `query:"search"`
	Tags       []string `query:"tags"`
	CategoryID *uint    `query:"category_id"`
}

// GalleryItemResponse serializes a published image for the public site.
type GalleryItemResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Caption   string    `json:"caption"`
	ImageURL  string    `json:"image_url"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// GalleryListResponse wraps a paginated public gallery listing.
type GalleryListResponse struct {
	Items      []GalleryItemResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}
