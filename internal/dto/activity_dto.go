package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/lumina-api/internal/models"
)

// ActivityListRequest defines filters for retrieving activity log entries.
// All filters are optional and combine with logical AND.
type ActivityListRequest struct {
	Page        int
	PageSize    int
	Search      string
	Action      string
	ActorID     uint
	From        *time.Time
	To          *time.Time
	FlaggedOnly bool
}

// ActivityResponse serializes one activity log entry, with actor identity and
// subject title attached when the referenced rows still exist.
type ActivityResponse struct {
	ID           uint                   `json:"id"`
	ActorID      *uint                  `json:"actor_id"`
	ActorEmail   string                 `json:"actor_email,omitempty"`
	ActorRole    string                 `json:"actor_role,omitempty"`
	Action       string                 `json:"action"`
	Detail       map[string]interface{} `json:"detail"`
	SubjectID    *uint                  `json:"subject_id"`
	SubjectTitle string                 `json:"subject_title,omitempty"`
	Suspicious   bool                   `json:"suspicious"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ActivityListResponse wraps paginated activity log entries.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// ActivityExport carries a CSV document ready to serve as a file download.
type ActivityExport struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// ActionCount is one entry in the top-actions ranking.
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// ActorCount is one entry in the top-actors ranking.
type ActorCount struct {
	ActorID uint   `json:"actor_id"`
	Email   string `json:"email"`
	Count   int64  `json:"count"`
}

// TrendPoint is one calendar day in the activity trend series.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ActivityStatsResponse aggregates dashboard statistics over the log.
type ActivityStatsResponse struct {
	Total         int64              `json:"total"`
	LastDay       int64              `json:"last_day"`
	LastWeek      int64              `json:"last_week"`
	LastMonth     int64              `json:"last_month"`
	Suspicious    int64              `json:"suspicious"`
	TopActions    []ActionCount      `json:"top_actions"`
	TopActors     []ActorCount       `json:"top_actors"`
	RecentFlagged []ActivityResponse `json:"recent_flagged"`
	Trend         []TrendPoint       `json:"trend"`
	GeneratedAt   time.Time          `json:"generated_at"`
	CacheHit      bool               `json:"cache_hit"`
}

func detailFromJSON(data datatypes.JSONMap) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}(data)
}

// NewActivityResponse converts a model into an activity DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	response := ActivityResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		Action:     string(entry.Action),
		Detail:     detailFromJSON(entry.Detail),
		SubjectID:  entry.SubjectID,
		Suspicious: entry.Action.IsSuspicious(),
		CreatedAt:  entry.CreatedAt,
	}
	if entry.Actor != nil {
		response.ActorEmail = entry.Actor.Email
		response.ActorRole = entry.Actor.Role
	}
	if entry.Subject != nil {
		response.SubjectTitle = entry.Subject.Title
	}
	return response
}
