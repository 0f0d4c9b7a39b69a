package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/repository"
	"github.com/noah-isme/lumina-api/pkg/ai"
	"github.com/noah-isme/lumina-api/pkg/storage"
)

// Image service error sentinels.
var (
	ErrImageNotFound        = errors.New("image not found")
	ErrUploadTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	ErrCaptionsUnavailable  = errors.New("caption suggestions not configured")
)

// AdminImageService exposes admin image management use cases.
type AdminImageService interface {
	List(ctx context.Context, req dto.AdminImageListRequest) (dto.AdminImageListResponse, error)
	Get(ctx context.Context, id uint) (dto.AdminImageResponse, error)
	Upload(ctx context.Context, file *multipart.FileHeader, title string, categoryID *uint, actor ActivityActor) (dto.AdminImageResponse, error)
	Update(ctx context.Context, id uint, payload dto.AdminImageUpdateRequest, actor ActivityActor) (dto.AdminImageResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
	BulkTag(ctx context.Context, payload dto.AdminBulkTagRequest, actor ActivityActor) (dto.BulkMutationResponse, error)
	BulkCategory(ctx context.Context, payload dto.AdminBulkCategoryRequest, actor ActivityActor) (dto.BulkMutationResponse, error)
	BulkDelete(ctx context.Context, payload dto.AdminBulkDeleteRequest, actor ActivityActor) (dto.BulkMutationResponse, error)
	SuggestCaption(ctx context.Context, id uint) (dto.CaptionSuggestionResponse, error)
}

type adminImageService struct {
	repo      repository.ImageRepository
	storage   storage.FileStorage
	activity  ActivityRecorder
	captioner ai.Captioner
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	maxSize   int64
	tracer    trace.Tracer
}

// NewAdminImageService constructs the image admin service. The captioner is
// optional.
func NewAdminImageService(repo repository.ImageRepository, store storage.FileStorage, activity ActivityRecorder, captioner ai.Captioner, validate *validator.Validate, maxSizeMB int, logger zerolog.Logger) AdminImageService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &adminImageService{
		repo:      repo,
		storage:   store,
		activity:  activity,
		captioner: captioner,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "admin_image_service").Logger(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		tracer:    otel.Tracer("github.com/noah-isme/lumina-api/internal/service/admin_image"),
	}
}

func (s *adminImageService) List(ctx context.Context, req dto.AdminImageListRequest) (dto.AdminImageListResponse, error) {
	filter := repository.ImageFilter{
		Search:   strings.TrimSpace(req.Search),
		Tags:     sanitizeTags(req.Tags),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}
	if req.CategoryID > 0 {
		categoryID := req.CategoryID
		filter.CategoryID = &categoryID
	}

	images, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AdminImageListResponse{}, err
	}

	items := make([]dto.AdminImageResponse, 0, len(images))
	for _, image := range images {
		items = append(items, dto.NewAdminImageResponse(image))
	}

	pagination := dto.PaginationMeta{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalItems: total,
		TotalPages: calculateTotalPages(total, filter.PageSize),
	}

	return dto.AdminImageListResponse{Items: items, Pagination: pagination}, nil
}

func (s *adminImageService) Get(ctx context.Context, id uint) (dto.AdminImageResponse, error) {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminImageResponse{}, ErrImageNotFound
		}
		return dto.AdminImageResponse{}, err
	}
	return dto.NewAdminImageResponse(image), nil
}

func (s *adminImageService) Upload(ctx context.Context, file *multipart.FileHeader, title string, categoryID *uint, actor ActivityActor) (dto.AdminImageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "image.upload")
	defer span.End()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.AdminImageResponse{}, err
	}

	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.AdminImageResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.AdminImageResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.AdminImageResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.AdminImageResponse{}, ErrUploadTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	if !strings.HasPrefix(mime.String(), "image/") {
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.AdminImageResponse{}, ErrUploadTypeNotAllowed
	}

	checksum := sha256.Sum256(buf.Bytes())

	stored, err := s.storage.Upload(ctx, file.Filename, bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.AdminImageResponse{}, err
	}

	cleanTitle := strings.TrimSpace(s.sanitizer.Sanitize(title))
	if cleanTitle == "" {
		cleanTitle = strings.TrimSpace(file.Filename)
	}

	actorID := actor.ID
	image := models.Image{
		Title:      cleanTitle,
		URL:        stored.URL,
		PublicID:   stored.PublicID,
		MimeType:   mime.String(),
		SizeBytes:  int64(buf.Len()),
		Checksum:   hex.EncodeToString(checksum[:]),
		Published:  true,
		CategoryID: categoryID,
		UploaderID: &actorID,
	}

	if err := s.repo.Create(ctx, &image); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.AdminImageResponse{}, err
	}

	span.SetStatus(codes.Ok, "stored")

	imageID := image.ID
	s.activity.Record(ctx, ActivityEntry{
		Action: models.ActionImageUpload,
		Detail: map[string]interface{}{
			"file_name":  file.Filename,
			"mime_type":  image.MimeType,
			"size_bytes": image.SizeBytes,
		},
		SubjectID: &imageID,
		Actor:     &actor,
	})

	return dto.NewAdminImageResponse(image), nil
}

func (s *adminImageService) Update(ctx context.Context, id uint, payload dto.AdminImageUpdateRequest, actor ActivityActor) (dto.AdminImageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AdminImageResponse{}, err
	}

	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminImageResponse{}, ErrImageNotFound
		}
		return dto.AdminImageResponse{}, err
	}

	changed := make([]string, 0, 5)
	if payload.Title != nil {
		image.Title = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Title))
		changed = append(changed, "title")
	}
	if payload.Description != nil {
		image.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
		changed = append(changed, "description")
	}
	if payload.Tags != nil {
		image.Tags = sanitizeTags(payload.Tags)
		changed = append(changed, "tags")
	}
	if payload.CategoryID != nil {
		image.CategoryID = payload.CategoryID
		changed = append(changed, "category_id")
	}
	if payload.Published != nil {
		image.Published = *payload.Published
		changed = append(changed, "published")
	}

	if err := s.repo.Update(ctx, &image); err != nil {
		return dto.AdminImageResponse{}, err
	}

	imageID := image.ID
	s.activity.Record(ctx, ActivityEntry{
		Action:    models.ActionImageUpdate,
		Detail:    map[string]interface{}{"changed": changed},
		SubjectID: &imageID,
		Actor:     &actor,
	})

	return dto.NewAdminImageResponse(image), nil
}

func (s *adminImageService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}

	s.destroyStored(ctx, image.PublicID)

	// No SubjectID here, the row is gone and the id would dangle. The title
	// lands in detail so the export still shows which image was removed.
	s.activity.Record(ctx, ActivityEntry{
		Action: models.ActionImageDelete,
		Detail: map[string]interface{}{"title": image.Title},
		Actor:  &actor,
	})

	return nil
}

func (s *adminImageService) BulkTag(ctx context.Context, payload dto.AdminBulkTagRequest, actor ActivityActor) (dto.BulkMutationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkMutationResponse{}, err
	}

	images, err := s.repo.ListByIDs(ctx, payload.ImageIDs)
	if err != nil {
		return dto.BulkMutationResponse{}, err
	}

	tags := sanitizeTags(payload.Tags)
	var affected int64
	for i := range images {
		images[i].Tags = mergeTags(images[i].Tags, tags)
		if err := s.repo.Update(ctx, &images[i]); err != nil {
			return dto.BulkMutationResponse{}, err
		}
		affected++
	}

	s.activity.Record(ctx, ActivityEntry{
		Action: models.ActionBulkTag,
		Detail: map[string]interface{}{"count": affected, "tags": tags},
		Actor:  &actor,
	})

	return dto.BulkMutationResponse{Affected: affected}, nil
}

func (s *adminImageService) BulkCategory(ctx context.Context, payload dto.AdminBulkCategoryRequest, actor ActivityActor) (dto.BulkMutationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkMutationResponse{}, err
	}

	affected, err := s.repo.UpdateCategoryByIDs(ctx, payload.ImageIDs, payload.CategoryID)
	if err != nil {
		return dto.BulkMutationResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Action: models.ActionBulkCategory,
		Detail: map[string]interface{}{"count": affected, "category_id": payload.CategoryID},
		Actor:  &actor,
	})

	return dto.BulkMutationResponse{Affected: affected}, nil
}

func (s *adminImageService) BulkDelete(ctx context.Context, payload dto.AdminBulkDeleteRequest, actor ActivityActor) (dto.BulkMutationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkMutationResponse{}, err
	}

	images, err := s.repo.ListByIDs(ctx, payload.ImageIDs)
	if err != nil {
		return dto.BulkMutationResponse{}, err
	}

	affected, err := s.repo.DeleteByIDs(ctx, payload.ImageIDs)
	if err != nil {
		return dto.BulkMutationResponse{}, err
	}

	for _, image := range images {
		s.destroyStored(ctx, image.PublicID)
	}

	s.activity.Record(ctx, ActivityEntry{
		Action: models.ActionBulkDelete,
		Detail: map[string]interface{}{"count": affected},
		Actor:  &actor,
	})

	return dto.BulkMutationResponse{Affected: affected}, nil
}

func (s *adminImageService) SuggestCaption(ctx context.Context, id uint) (dto.CaptionSuggestionResponse, error) {
	if s.captioner == nil {
		return dto.CaptionSuggestionResponse{}, ErrCaptionsUnavailable
	}

	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CaptionSuggestionResponse{}, ErrImageNotFound
		}
		return dto.CaptionSuggestionResponse{}, err
	}

	input := ai.CaptionInput{
		Title:    image.Title,
		MimeType: image.MimeType,
		Tags:     image.Tags,
	}
	if image.Category != nil {
		input.CategoryName = image.Category.Name
	}

	result, err := s.captioner.Suggest(ctx, input)
	if err != nil {
		return dto.CaptionSuggestionResponse{}, err
	}

	return dto.CaptionSuggestionResponse{Caption: result.Caption, Model: result.Model}, nil
}

// destroyStored removes the remote asset; failures only warn because the
// database row is already gone.
func (s *adminImageService) destroyStored(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.storage.Destroy(ctx, publicID); err != nil {
		s.logger.Warn().Err(err).Str("public_id", publicID).Msg("failed to remove stored asset")
	}
}

func mergeTags(existing, extra []string) []string {
	merged := append([]string(nil), existing...)
	seen := map[string]struct{}{}
	for _, tag := range merged {
		seen[tag] = struct{}{}
	}
	for _, tag := range extra {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		merged = append(merged, tag)
	}
	return merged
}
