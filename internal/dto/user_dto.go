package dto

import (
	"time"

	"github.com/noah-isme/lumina-api/internal/models"
)

// AdminUserListRequest defines filters for listing users.
type AdminUserListRequest struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	Status   string
}

// AdminUserCreateRequest captures payloads for creating accounts.
type AdminUserCreateRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin editor"`
}

// AdminUserUpdateRequest captures partial updates for accounts.
type AdminUserUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=128"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Role   *string `json:"role" validate:"omitempty,oneof=admin editor"`
	Status *string `json:"status" validate:"omitempty,oneof=active suspended"`
}

// AdminUserResponse serializes account data for admin endpoints.
type AdminUserResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AdminUserListResponse wraps a paginated user listing.
type AdminUserListResponse struct {
	Items      []AdminUserResponse `json:"items"`
	Pagination PaginationMeta      `json:"pagination"`
}

// NewAdminUserResponse converts a user model into a DTO.
func NewAdminUserResponse(user models.User) AdminUserResponse {
	return AdminUserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
