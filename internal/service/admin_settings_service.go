package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/repository"
)

// ErrInvalidSettings wraps schema violations in the settings document.
var ErrInvalidSettings = errors.New("settings document is invalid")

// settingsSchema constrains the site settings document. Unknown keys are
// rejected so typos in the admin form never silently persist.
const settingsSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"site_name": {"type": "string", "minLength": 1, "maxLength": 128},
		"tagline": {"type": "string", "maxLength": 255},
		"contact_email": {"type": "string", "format": "email"},
		"items_per_page": {"type": "integer", "minimum": 1, "maximum": 100},
		"allow_registration": {"type": "boolean"},
		"maintenance_mode": {"type": "boolean"},
		"social_links": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	}
}`

// AdminSettingsService manages the site settings document.
type AdminSettingsService interface {
	Get(ctx context.Context) (dto.SettingsResponse, error)
	Update(ctx context.Context, payload dto.SettingsUpdateRequest, actor ActivityActor) (dto.SettingsResponse, error)
}

type adminSettingsService struct {
	repo     repository.SettingsRepository
	activity ActivityRecorder
	schema   *jsonschema.Schema
	logger   zerolog.Logger
}

// NewAdminSettingsService constructs the settings service.
func NewAdminSettingsService(repo repository.SettingsRepository, activity ActivityRecorder, logger zerolog.Logger) (AdminSettingsService, error) {
	schema, err := jsonschema.CompileString("settings.json", settingsSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile settings schema: %w", err)
	}

	return &adminSettingsService{
		repo:     repo,
		activity: activity,
		schema:   schema,
		logger:   logger.With().Str("component", "admin_settings_service").Logger(),
	}, nil
}

func (s *adminSettingsService) Get(ctx context.Context) (dto.SettingsResponse, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}
	return toSettingsResponse(settings), nil
}

func (s *adminSettingsService) Update(ctx context.Context, payload dto.SettingsUpdateRequest, actor ActivityActor) (dto.SettingsResponse, error) {
	if payload.Document == nil {
		return dto.SettingsResponse{}, fmt.Errorf("%w: document is required", ErrInvalidSettings)
	}

	if err := s.schema.Validate(payload.Document); err != nil {
		return dto.SettingsResponse{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	changed := changedKeys(settings.Document, payload.Document)

	actorID := actor.ID
	settings.Document = datatypes.JSONMap(payload.Document)
	settings.UpdatedBy = &actorID

	if err := s.repo.Save(ctx, &settings); err != nil {
		return dto.SettingsResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Action: models.ActionSettingsUpdate,
		Detail: map[string]interface{}{"changed": changed},
		Actor:  &actor,
	})

	return toSettingsResponse(settings), nil
}

func toSettingsResponse(settings models.SiteSettings) dto.SettingsResponse {
	document := map[string]interface{}(settings.Document)
	if document == nil {
		document = map[string]interface{}{}
	}
	return dto.SettingsResponse{
		Document:  document,
		UpdatedBy: settings.UpdatedBy,
		UpdatedAt: settings.UpdatedAt,
	}
}

// changedKeys lists keys whose value differs between the stored and incoming
// documents, sorted for stable detail payloads.
func changedKeys(old datatypes.JSONMap, next map[string]interface{}) []string {
	keys := map[string]struct{}{}
	for key := range old {
		keys[key] = struct{}{}
	}
	for key := range next {
		keys[key] = struct{}{}
	}

	changed := make([]string, 0, len(keys))
	for key := range keys {
		before, hadBefore := old[key]
		after, hasAfter := next[key]
		if !hadBefore || !hasAfter || fmt.Sprintf("%v", before) != fmt.Sprintf("%v", after) {
			changed = append(changed, key)
		}
	}

	sort.Strings(changed)
	return changed
}
