package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ActionKind identifies what happened in an activity log entry. Base kinds
// form a closed set; derived suspicious kinds are built from a FlagType.
type ActionKind string

// Base action kinds recorded by the admin panel.
const (
	ActionImageUpload  ActionKind = "image uploaded"
	ActionImageUpdate  ActionKind = "image updated"
	ActionImageDelete  ActionKind = "image deleted"
	ActionBulkDelete   ActionKind = "bulk delete"
	ActionBulkTag      ActionKind = "bulk tag update"
	ActionBulkCategory ActionKind = "bulk category update"

	ActionCategoryCreate ActionKind = "category created"
	ActionCategoryUpdate ActionKind = "category updated"
	ActionCategoryDelete ActionKind = "category deleted"

	ActionUserCreate ActionKind = "user created"
	ActionUserUpdate ActionKind = "user updated"
	ActionUserDelete ActionKind = "user deleted"

	ActionLogin          ActionKind = "login"
	ActionLoginFailed    ActionKind = "login failed"
	ActionLogout         ActionKind = "logout"
	ActionPasswordChange ActionKind = "password changed"
	ActionSettingsUpdate ActionKind = "settings updated"
)

// SuspiciousPrefix marks the reserved action family written by the anomaly
// detector. No base kind may start with it.
const SuspiciousPrefix = "suspicious activity: "

// FlagType discriminates derived suspicious events.
type FlagType string

// Flag types produced by the anomaly detector.
const (
	FlagRapidActions FlagType = "rapid actions"
	FlagBulkDeletion FlagType = "bulk deletions"
	FlagFailedLogins FlagType = "multiple failed logins"
)

var deleteKinds = map[ActionKind]struct{}{
	ActionImageDelete:    {},
	ActionBulkDelete:     {},
	ActionCategoryDelete: {},
	ActionUserDelete:     {},
}

// DeleteActionKinds returns the kinds counted by the bulk-deletion check.
func DeleteActionKinds() []ActionKind {
	kinds := make([]ActionKind, 0, len(deleteKinds))
	for kind := range deleteKinds {
		kinds = append(kinds, kind)
	}
	return kinds
}

// IsDelete reports whether the kind destroys a resource.
func (k ActionKind) IsDelete() bool {
	_, ok := deleteKinds[k]
	return ok
}

// IsSuspicious reports whether the kind belongs to the derived flagged family.
func (k ActionKind) IsSuspicious() bool {
	return strings.HasPrefix(string(k), SuspiciousPrefix)
}

// FlaggedAction builds the derived action kind for a flag type.
func FlaggedAction(flag FlagType) ActionKind {
	return ActionKind(SuspiciousPrefix + string(flag))
}

// ActivityLog is one immutable record of an action taken in the system.
// Rows are append only; nothing in the service layer updates or deletes them.
// ActorID is nil only for failed logins that could not be matched to an
// account. CreatedAt is assigned by the recorder and is the sole key used for
// anomaly window math.
type ActivityLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	ActorID   *uint             `gorm:"index" json:"actor_id"`
	Actor     *User             `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Action    ActionKind        `gorm:"size:64;not null;index" json:"action"`
	Detail    datatypes.JSONMap `gorm:"type:json" json:"detail"`
	SubjectID *uint             `gorm:"index" json:"subject_id"`
	Subject   *Image            `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}
