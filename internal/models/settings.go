package models

import (
	"time"

	"gorm.io/datatypes"
)

// SiteSettings is the single JSON settings document backing the admin
// settings form. Exactly one row exists; updates replace the document.
type SiteSettings struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Document  datatypes.JSONMap `gorm:"type:json" json:"document"`
	UpdatedBy *uint             `json:"updated_by"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
