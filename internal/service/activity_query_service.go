package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/observability"
	"github.com/noah-isme/lumina-api/internal/repository"
)

const (
	statsCacheKey   = "activities:stats:v1"
	statsTrendDays  = 7
	statsTopLimit   = 10
	statsFlagsLimit = 5
)

// exportHeader is the fixed CSV column order for activity exports. Consumers
// depend on it; do not reorder.
var exportHeader = []string{"Date", "Time", "User Email", "User Role", "Action", "Image Title", "Details", "Suspicious"}

// ActivityQueryService answers filtered, paginated and aggregate queries over
// the activity log. Unlike the record path, read failures are surfaced.
type ActivityQueryService interface {
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
	Export(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityExport, error)
	Stats(ctx context.Context) (dto.ActivityStatsResponse, error)
}

type activityQueryService struct {
	repo     repository.ActivityLogRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewActivityQueryService constructs the query service. The cache client is
// optional; without it every stats call aggregates from storage.
func NewActivityQueryService(repo repository.ActivityLogRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ActivityQueryService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &activityQueryService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "activity_query_service").Logger(),
		now:      time.Now,
	}
}

func (s *activityQueryService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := buildActivityFilter(req)
	filter.Page = normalizePage(req.Page)
	filter.PageSize = clampPageSize(req.PageSize)

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActivityResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalItems: total,
		TotalPages: calculateTotalPages(total, filter.PageSize),
	}

	return dto.ActivityListResponse{Items: items, Pagination: pagination}, nil
}

// Export returns every matching entry as a CSV document; pagination is
// bypassed entirely.
func (s *activityQueryService) Export(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityExport, error) {
	start := time.Now()
	defer func() {
		observability.ActivityExportLatency().Observe(time.Since(start).Seconds())
	}()

	filter := buildActivityFilter(req)

	entries, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityExport{}, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeader); err != nil {
		return dto.ActivityExport{}, err
	}

	for _, entry := range entries {
		if err := writer.Write(exportRow(entry)); err != nil {
			return dto.ActivityExport{}, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return dto.ActivityExport{}, err
	}

	return dto.ActivityExport{
		FileName:    fmt.Sprintf("activity-logs-%s.csv", s.now().Format("2006-01-02")),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

func (s *activityQueryService) Stats(ctx context.Context) (dto.ActivityStatsResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/lumina-api/internal/service/activity_query")
	ctx, span := tracer.Start(ctx, "activities.stats")
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, statsCacheKey).Result()
		if err == nil {
			var response dto.ActivityStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.ActivityStatsRequests().WithLabelValues("hit").Inc()
				span.SetAttributes(attribute.Bool("stats.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read activity stats cache")
			span.RecordError(err)
		}
	}

	response, err := s.aggregate(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stats_aggregation_failed")
		return dto.ActivityStatsResponse{}, err
	}

	span.SetAttributes(
		attribute.Int64("stats.total", response.Total),
		attribute.Int64("stats.suspicious", response.Suspicious),
	)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store activity stats cache")
				span.RecordError(err)
			}
		}
	}

	observability.ActivityStatsRequests().WithLabelValues("miss").Inc()

	return response, nil
}

func (s *activityQueryService) aggregate(ctx context.Context) (dto.ActivityStatsResponse, error) {
	now := s.now()

	total, err := s.repo.CountTotal(ctx)
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	lastDay, err := s.repo.CountSince(ctx, now.AddDate(0, 0, -1))
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	lastWeek, err := s.repo.CountSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	lastMonth, err := s.repo.CountSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	suspicious, err := s.repo.CountSuspicious(ctx)
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	actionRows, err := s.repo.TopActions(ctx, statsTopLimit)
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	actorRows, err := s.repo.TopActors(ctx, statsTopLimit)
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	flagged, err := s.repo.RecentSuspicious(ctx, statsFlagsLimit)
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	trend, err := s.buildTrend(ctx, now)
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	topActions := make([]dto.ActionCount, 0, len(actionRows))
	for _, row := range actionRows {
		topActions = append(topActions, dto.ActionCount{Action: row.Action, Count: row.Count})
	}

	topActors := make([]dto.ActorCount, 0, len(actorRows))
	for _, row := range actorRows {
		topActors = append(topActors, dto.ActorCount{ActorID: row.ActorID, Email: row.Email, Count: row.Count})
	}

	recentFlagged := make([]dto.ActivityResponse, 0, len(flagged))
	for _, entry := range flagged {
		recentFlagged = append(recentFlagged, dto.NewActivityResponse(entry))
	}

	return dto.ActivityStatsResponse{
		Total:         total,
		LastDay:       lastDay,
		LastWeek:      lastWeek,
		LastMonth:     lastMonth,
		Suspicious:    suspicious,
		TopActions:    topActions,
		TopActors:     topActors,
		RecentFlagged: recentFlagged,
		Trend:         trend,
		GeneratedAt:   now,
	}, nil
}

// buildTrend buckets the last seven calendar days, oldest first, with zero
// entries for quiet days.
func (s *activityQueryService) buildTrend(ctx context.Context, now time.Time) ([]dto.TrendPoint, error) {
	today := startOfDay(now)
	cutoff := today.AddDate(0, 0, -(statsTrendDays - 1))

	timestamps, err := s.repo.ListCreatedSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for _, ts := range timestamps {
		counts[startOfDay(ts).Format("2006-01-02")]++
	}

	trend := make([]dto.TrendPoint, 0, statsTrendDays)
	for offset := 0; offset < statsTrendDays; offset++ {
		day := cutoff.AddDate(0, 0, offset).Format("2006-01-02")
		trend = append(trend, dto.TrendPoint{Date: day, Count: counts[day]})
	}

	return trend, nil
}

func buildActivityFilter(req dto.ActivityListRequest) repository.ActivityLogFilter {
	filter := repository.ActivityLogFilter{
		Search:      req.Search,
		Action:      req.Action,
		From:        req.From,
		To:          req.To,
		FlaggedOnly: req.FlaggedOnly,
	}
	if req.ActorID > 0 {
		actorID := req.ActorID
		filter.ActorID = &actorID
	}
	return filter
}

func exportRow(entry models.ActivityLog) []string {
	email := ""
	role := ""
	if entry.Actor != nil {
		email = entry.Actor.Email
		role = entry.Actor.Role
	}

	title := ""
	if entry.Subject != nil {
		title = entry.Subject.Title
	}

	details := "{}"
	if len(entry.Detail) > 0 {
		if encoded, err := json.Marshal(entry.Detail); err == nil {
			details = string(encoded)
		}
	}

	suspicious := "No"
	if entry.Action.IsSuspicious() {
		suspicious = "Yes"
	}

	return []string{
		entry.CreatedAt.Format("2006-01-02"),
		entry.CreatedAt.Format("15:04:05"),
		email,
		role,
		string(entry.Action),
		title,
		details,
		suspicious,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
