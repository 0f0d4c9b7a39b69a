package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Category groups images in the library.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"size:128;uniqueIndex" json:"slug"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Image is one uploaded asset in the library.
type Image struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	URL         string    `gorm:"size:512;not null" json:"url"`
	PublicID    string    `gorm:"size:255" json:"public_id"`
	MimeType    string    `gorm:"size:128" json:"mime_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Checksum    string    `gorm:"size:128;index" json:"checksum"`
	Published   bool      `gorm:"index;default:true" json:"published"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	UploaderID  *uint     `gorm:"index" json:"uploader_id"`
	TagsRaw     string    `gorm:"column:tags;type:text" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tags        []string  `gorm:"-" json:"tags"`
}

// BeforeSave normalises tag data before persisting.
func (i *Image) BeforeSave(tx *gorm.DB) error {
	i.TagsRaw = encodeTags(i.Tags)
	return nil
}

// AfterFind hydrates the tag list after retrieval.
func (i *Image) AfterFind(tx *gorm.DB) error {
	i.Tags = decodeTags(i.TagsRaw)
	return nil
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(strings.ToLower(tag))
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "|" + strings.Join(cleaned, "|") + "|"
}

func decodeTags(raw string) []string {
	raw = strings.Trim(raw, "|")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		tags = append(tags, trimmed)
	}
	return tags
}
