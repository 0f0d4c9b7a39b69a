package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/observability"
	"github.com/noah-isme/lumina-api/internal/repository"
)

// Detection windows and thresholds. Fixed constants: this is a single-tenant
// admin tool, not a per-tenant policy engine.
const (
	rapidActionWindow    = time.Hour
	rapidActionThreshold = 50

	bulkDeleteWindow    = 10 * time.Minute
	bulkDeleteThreshold = 10

	failedLoginWindow    = 5 * time.Minute
	failedLoginThreshold = 5
)

// AnomalyDetector evaluates an actor's recent behaviour after every recorded
// entry and appends derived suspicious events when a threshold is crossed.
// Counts are re-queried from the log at evaluation time, so concurrent writes
// by the same actor can each miss the other's row; detection at the exact
// threshold boundary is approximate, not exact-once.
type AnomalyDetector struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewAnomalyDetector constructs the detector.
func NewAnomalyDetector(repo repository.ActivityLogRepository, logger zerolog.Logger) *AnomalyDetector {
	return &AnomalyDetector{
		repo:   repo,
		logger: logger.With().Str("component", "anomaly_detector").Logger(),
		now:    time.Now,
	}
}

// Evaluate runs the independent checks for the actor that just recorded the
// given action. Checks are non-exclusive and best effort: a failing count
// query is logged and skipped, never surfaced to the record path.
func (d *AnomalyDetector) Evaluate(ctx context.Context, actorID uint, action models.ActionKind) {
	now := d.now()

	count, err := d.repo.CountByActorSince(ctx, actorID, now.Add(-rapidActionWindow))
	if err != nil {
		d.logger.Warn().Err(err).Uint("actor_id", actorID).Msg("rapid action check failed")
	} else if count > rapidActionThreshold {
		d.flag(ctx, actorID, models.FlagRapidActions, count, "1h")
	}

	if action.IsDelete() {
		count, err := d.repo.CountByActorActionsSince(ctx, actorID, models.DeleteActionKinds(), now.Add(-bulkDeleteWindow))
		if err != nil {
			d.logger.Warn().Err(err).Uint("actor_id", actorID).Msg("bulk deletion check failed")
		} else if count > bulkDeleteThreshold {
			d.flag(ctx, actorID, models.FlagBulkDeletion, count, "10m")
		}
	}

	if action == models.ActionLoginFailed {
		count, err := d.repo.CountByActorActionsSince(ctx, actorID, []models.ActionKind{models.ActionLoginFailed}, now.Add(-failedLoginWindow))
		if err != nil {
			d.logger.Warn().Err(err).Uint("actor_id", actorID).Msg("failed login check failed")
		} else if count > failedLoginThreshold {
			d.flag(ctx, actorID, models.FlagFailedLogins, count, "5m")
		}
	}
}

// flag writes the derived entry straight to the repository rather than back
// through the recorder, so flagging can never trigger another evaluation.
func (d *AnomalyDetector) flag(ctx context.Context, actorID uint, flagType models.FlagType, count int64, window string) {
	entry := models.ActivityLog{
		ActorID: &actorID,
		Action:  models.FlaggedAction(flagType),
		Detail: datatypes.JSONMap{
			"flagged":                true,
			"suspiciousActivityType": string(flagType),
			"count":                  count,
			"window":                 window,
		},
		CreatedAt: d.now(),
	}

	if err := d.repo.Create(ctx, &entry); err != nil {
		d.logger.Error().Err(err).
			Uint("actor_id", actorID).
			Str("flag_type", string(flagType)).
			Msg("failed to persist suspicious activity flag")
		return
	}

	observability.SuspiciousFlags().WithLabelValues(string(flagType)).Inc()
	d.logger.Warn().
		Uint("actor_id", actorID).
		Str("flag_type", string(flagType)).
		Int64("count", count).
		Str("window", window).
		Msg("suspicious activity flagged")
}
