package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/lumina-api/internal/models"
)

// ActivityLogFilter narrows activity log queries. A zero PageSize disables
// pagination, which the export path relies on.
type ActivityLogFilter struct {
	Search      string
	Action      string
	ActorID     *uint
	From        *time.Time
	To          *time.Time
	FlaggedOnly bool
	Page        int
	PageSize    int
}

// ActionCountRow is one row of the grouped top-actions query.
type ActionCountRow struct {
	Action string
	Count  int64
}

// ActorCountRow is one row of the grouped top-actors query.
type ActorCountRow struct {
	ActorID uint
	Email   string
	Count   int64
}

// ActivityLogRepository persists and reads the append-only activity log.
// There is deliberately no update or delete surface.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)

	CountByActorSince(ctx context.Context, actorID uint, since time.Time) (int64, error)
	CountByActorActionsSince(ctx context.Context, actorID uint, actions []models.ActionKind, since time.Time) (int64, error)

	CountTotal(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountSuspicious(ctx context.Context) (int64, error)
	TopActions(ctx context.Context, limit int) ([]ActionCountRow, error)
	TopActors(ctx context.Context, limit int) ([]ActorCountRow, error)
	RecentSuspicious(ctx context.Context, limit int) ([]models.ActivityLog, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.
			Joins("LEFT JOIN users ON users.id = activity_logs.actor_id").
			Joins("LEFT JOIN images ON images.id = activity_logs.subject_id").
			Where("LOWER(activity_logs.action) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(images.title) LIKE ?", pattern, pattern, pattern)
	}

	if filter.Action != "" {
		query = query.Where("LOWER(activity_logs.action) LIKE ?", "%"+strings.ToLower(filter.Action)+"%")
	}

	if filter.ActorID != nil {
		query = query.Where("activity_logs.actor_id = ?", *filter.ActorID)
	}

	if filter.From != nil {
		query = query.Where("activity_logs.created_at >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("activity_logs.created_at <= ?", *filter.To)
	}

	if filter.FlaggedOnly {
		query = query.Where("activity_logs.action LIKE ?", models.SuspiciousPrefix+"%")
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var entries []models.ActivityLog
	err := query.
		Preload("Actor").
		Preload("Subject").
		Order("activity_logs.created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityLogRepository) CountByActorSince(ctx context.Context, actorID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("actor_id = ?", actorID).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *activityLogRepository) CountByActorActionsSince(ctx context.Context, actorID uint, actions []models.ActionKind, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("actor_id = ?", actorID).
		Where("action IN ?", actions).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *activityLogRepository) CountTotal(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Count(&count).Error
	return count, err
}

func (r *activityLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *activityLogRepository) CountSuspicious(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("action LIKE ?", models.SuspiciousPrefix+"%").
		Count(&count).Error
	return count, err
}

func (r *activityLogRepository) TopActions(ctx context.Context, limit int) ([]ActionCountRow, error) {
	var rows []ActionCountRow
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("action, COUNT(*) AS count").
		Group("action").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *activityLogRepository) TopActors(ctx context.Context, limit int) ([]ActorCountRow, error) {
	var rows []ActorCountRow
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("activity_logs.actor_id AS actor_id, users.email AS email, COUNT(*) AS count").
		Joins("LEFT JOIN users ON users.id = activity_logs.actor_id").
		Where("activity_logs.actor_id IS NOT NULL").
		Group("activity_logs.actor_id, users.email").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *activityLogRepository) RecentSuspicious(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("action LIKE ?", models.SuspiciousPrefix+"%").
		Preload("Actor").
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// ListCreatedSince returns the creation timestamps of every entry at or after
// the cutoff. Daily bucketing happens in the service so the query stays
// portable across dialects.
func (r *activityLogRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var timestamps []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &timestamps).Error
	return timestamps, err
}
