package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/repository"
)

var anomalyNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func setupAnomalyRecorder(t *testing.T) (*gorm.DB, *activityService) {
	t.Helper()

	db := openActivityTestDB(t, "anomaly")
	repo := repository.NewActivityLogRepository(db)
	detector := NewAnomalyDetector(repo, zerolog.Nop())
	detector.now = func() time.Time { return anomalyNow }

	svc := NewActivityService(repo, detector, nil, zerolog.Nop()).(*activityService)
	svc.now = detector.now

	return db, svc
}

func seedEntries(t *testing.T, db *gorm.DB, actorID uint, action models.ActionKind, count int, at time.Time) {
	t.Helper()

	for i := 0; i < count; i++ {
		id := actorID
		entry := models.ActivityLog{ActorID: &id, Action: action, CreatedAt: at}
		require.NoError(t, db.Create(&entry).Error)
	}
}

func flagsFor(t *testing.T, db *gorm.DB, actorID uint, flagType models.FlagType) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).
		Where("actor_id = ? AND action = ?", actorID, string(models.FlaggedAction(flagType))).
		Count(&count).Error)
	return count
}

func TestAnomalyDetectorRapidActions(t *testing.T) {
	db, svc := setupAnomalyRecorder(t)
	actor := &ActivityActor{ID: 1, Email: "admin@lumina.test", Role: "admin"}

	// 49 prior events plus this one is exactly the threshold, not past it.
	seedEntries(t, db, 1, models.ActionImageUpdate, 49, anomalyNow.Add(-30*time.Minute))
	require.NotNil(t, svc.Record(context.Background(), ActivityEntry{Action: models.ActionImageUpdate, Actor: actor}))
	require.Zero(t, flagsFor(t, db, 1, models.FlagRapidActions))

	require.NotNil(t, svc.Record(context.Background(), ActivityEntry{Action: models.ActionImageUpdate, Actor: actor}))
	require.Equal(t, int64(1), flagsFor(t, db, 1, models.FlagRapidActions))
}

func TestAnomalyDetectorRapidActionsIgnoresOldEvents(t *testing.T) {
	db, svc := setupAnomalyRecorder(t)
	actor := &ActivityActor{ID: 1}

	seedEntries(t, db, 1, models.ActionImageUpdate, 60, anomalyNow.Add(-2*time.Hour))

	require.NotNil(t, svc.Record(context.Background(), ActivityEntry{Action: models.ActionImageUpdate, Actor: actor}))
	require.Zero(t, flagsFor(t, db, 1, models.FlagRapidActions))
}

func TestAnomalyDetectorBulkDeletions(t *testing.T) {
	db, svc := setupAnomalyRecorder(t)
	actor := &ActivityActor{ID: 2, Email: "editor@lumina.test", Role: "editor"}

	// Interleaved non-delete events must not count towards the delete check.
	seedEntries(t, db, 2, models.ActionImageUpdate, 20, anomalyNow.Add(-5*time.Minute))
	seedEntries(t, db, 2, models.ActionImageDelete, 10, anomalyNow.Add(-5*time.Minute))

	require.NotNil(t, svc.Record(context.Background(), ActivityEntry{Action: models.ActionImageDelete, Actor: actor}))
	require.Equal(t, int64(1), flagsFor(t, db, 2, models.FlagBulkDeletion))
}

func TestAnomalyDetectorBulkDeletionsOnlyRunsOnDeletes(t *testing.T) {
	db, svc := setupAnomalyRecorder(t)
	actor := &ActivityActor{ID: 2}

	seedEntries(t, db, 2, models.ActionBulkDelete, 15, anomalyNow.Add(-5*time.Minute))

	// A non-delete trigger leaves the delete window untouched even though
	// the count is already past the threshold.
	require.NotNil(t, svc.Record(context.Background(), ActivityEntry{Action: models.ActionImageUpdate, Actor: actor}))
	require.Zero(t, flagsFor(t, db, 2, models.FlagBulkDeletion))
}

func TestAnomalyDetectorFailedLogins(t *testing.T) {
	db, svc := setupAnomalyRecorder(t)
	actor := &ActivityActor{ID: 3, Email: "victim@lumina.test"}

	seedEntries(t, db, 3, models.ActionLoginFailed, 4, anomalyNow.Add(-2*time.Minute))

	// Fifth failure within the window is the threshold, sixth crosses it.
	require.NotNil(t, svc.Record(context.Background(), ActivityEntry{Action: models.ActionLoginFailed, Actor: actor}))
	require.Zero(t, flagsFor(t, db, 3, models.FlagFailedLogins))

	require.NotNil(t, svc.Record(context.Background(), ActivityEntry{Action: models.ActionLoginFailed, Actor: actor}))
	require.Equal(t, int64(1), flagsFor(t, db, 3, models.FlagFailedLogins))
}

func TestAnomalyDetectorFlagDetailShape(t *testing.T) {
	db, svc := setupAnomalyRecorder(t)
	actor := &ActivityActor{ID: 4}

	seedEntries(t, db, 4, models.ActionLoginFailed, 6, anomalyNow.Add(-time.Minute))
	require.NotNil(t, svc.Record(context.Background(), ActivityEntry{Action: models.ActionLoginFailed, Actor: actor}))

	var flag models.ActivityLog
	require.NoError(t, db.
		Where("actor_id = ? AND action = ?", 4, string(models.FlaggedAction(models.FlagFailedLogins))).
		First(&flag).Error)
	require.Equal(t, true, flag.Detail["flagged"])
	require.Equal(t, string(models.FlagFailedLogins), flag.Detail["suspiciousActivityType"])
	require.Equal(t, "5m", flag.Detail["window"])
	require.True(t, flag.Action.IsSuspicious())
}
