package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/observability"
	"github.com/noah-isme/lumina-api/internal/repository"
)

// ActivityActor is the resolved identity performing an action. Handlers build
// it from the authenticated request; the recorder never reads session state.
type ActivityActor struct {
	ID    uint
	Email string
	Role  string
}

// ActivityEntry captures the details required to persist one log entry.
// Actor may be nil only for failed logins that cannot be matched to an
// account; every other entry without an actor is dropped.
type ActivityEntry struct {
	Action    models.ActionKind
	Detail    map[string]interface{}
	SubjectID *uint
	Actor     *ActivityActor
}

// ActivityRecorder appends entries to the activity log. Recording is
// advisory: it never returns an error, so a logging failure can never fail
// the business operation it observes. A nil result means nothing was
// persisted.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) *models.ActivityLog
}

// ActivityPublisher receives persisted entries for live fan-out.
type ActivityPublisher interface {
	Publish(event dto.ActivityResponse)
}

type activityService struct {
	repo     repository.ActivityLogRepository
	detector *AnomalyDetector
	stream   ActivityPublisher
	logger   zerolog.Logger
	now      func() time.Time
}

// NewActivityService constructs the activity recorder. The stream publisher
// is optional.
func NewActivityService(repo repository.ActivityLogRepository, detector *AnomalyDetector, stream ActivityPublisher, logger zerolog.Logger) ActivityRecorder {
	return &activityService{
		repo:     repo,
		detector: detector,
		stream:   stream,
		logger:   logger.With().Str("component", "activity_service").Logger(),
		now:      time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) *models.ActivityLog {
	if strings.TrimSpace(string(entry.Action)) == "" {
		s.logger.Warn().Msg("activity entry dropped: empty action")
		return nil
	}

	var actorID *uint
	if entry.Actor != nil {
		id := entry.Actor.ID
		actorID = &id
	} else if entry.Action != models.ActionLoginFailed {
		s.logger.Warn().
			Str("action", string(entry.Action)).
			Msg("activity entry dropped: no resolvable actor")
		return nil
	}

	entryModel := models.ActivityLog{
		ActorID:   actorID,
		Action:    entry.Action,
		Detail:    sanitizeDetail(entry.Detail),
		SubjectID: entry.SubjectID,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, &entryModel); err != nil {
		observability.ActivityRecordFailures().Inc()
		s.logger.Error().Err(err).
			Str("action", string(entry.Action)).
			Msg("failed to persist activity log entry")
		return nil
	}

	observability.ActivityRecords().WithLabelValues(string(entry.Action)).Inc()

	if actorID != nil && s.detector != nil {
		s.detector.Evaluate(ctx, *actorID, entry.Action)
	}

	if s.stream != nil {
		event := dto.NewActivityResponse(entryModel)
		if entry.Actor != nil {
			event.ActorEmail = entry.Actor.Email
			event.ActorRole = entry.Actor.Role
		}
		s.stream.Publish(event)
	}

	return &entryModel
}

// sanitizeDetail masks credential-shaped keys before the payload is stored.
func sanitizeDetail(detail map[string]interface{}) datatypes.JSONMap {
	if detail == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range detail {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
