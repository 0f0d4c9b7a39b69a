package dto

// LoginRequest captures credentials for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and account summary.
type LoginResponse struct {
	Token string            `json:"token"`
	User  AdminUserResponse `json:"user"`
}

// ChangePasswordRequest captures payloads for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}
