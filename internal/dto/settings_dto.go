package dto

import "time"

// SettingsResponse serializes the site settings document.
type SettingsResponse struct {
	Document  map[string]interface{} `json:"document"`
	UpdatedBy *uint                  `json:"updated_by"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// SettingsUpdateRequest replaces the settings document. The payload is
// validated against the settings JSON schema before persisting.
type SettingsUpdateRequest struct {
	Document map[string]interface{} `json:"document" validate:"required"`
}
