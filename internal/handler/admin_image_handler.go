package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/service"
	"github.com/noah-isme/lumina-api/internal/utils"
)

// AdminImageHandler exposes the image management endpoints.
type AdminImageHandler struct {
	service service.AdminImageService
	logger  zerolog.Logger
}

// NewAdminImageHandler constructs the handler.
func NewAdminImageHandler(service service.AdminImageService, logger zerolog.Logger) *AdminImageHandler {
	return &AdminImageHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_image_handler").Logger(),
	}
}

// Register attaches image routes to the router group.
func (h *AdminImageHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.upload)
	router.Post("/bulk/tags", h.bulkTag)
	router.Post("/bulk/category", h.bulkCategory)
	router.Post("/bulk/delete", h.bulkDelete)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/caption", h.suggestCaption)
}

func (h *AdminImageHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	categoryID, err := parseQueryInt(c, "category_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
	}

	req := dto.AdminImageListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	}
	if tags := c.Query("tags"); tags != "" {
		req.Tags = splitAndTrim(tags)
	}
	if categoryID > 0 {
		req.CategoryID = uint(categoryID)
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list images")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list images")
	}

	return utils.SendSuccess(c, "images", response)
}

func (h *AdminImageHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid image id")
	}

	response, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "image not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load image")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load image")
	}

	return utils.SendSuccess(c, "image", response)
}

func (h *AdminImageHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	var categoryID *uint
	if raw := c.FormValue("category_id"); raw != "" {
		parsed, err := parseQueryIntValue(raw)
		if err != nil || parsed <= 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
		}
		id := uint(parsed)
		categoryID = &id
	}

	response, err := h.service.Upload(c.Context(), file, c.FormValue("title"), categoryID, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "only image uploads are allowed")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to upload image")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to upload image")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "image uploaded", response)
}

func (h *AdminImageHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid image id")
	}

	var payload dto.AdminImageUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Update(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrImageNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "image not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update image")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update image")
		}
	}

	return utils.SendSuccess(c, "image updated", response)
}

func (h *AdminImageHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid image id")
	}

	if err := h.service.Delete(c.Context(), id, activityActorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "image not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete image")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete image")
	}

	return utils.SendSuccess(c, "image deleted", nil)
}

func (h *AdminImageHandler) bulkTag(c *fiber.Ctx) error {
	var payload dto.AdminBulkTagRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.BulkTag(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to tag images")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to tag images")
	}

	return utils.SendSuccess(c, "images tagged", response)
}

func (h *AdminImageHandler) bulkCategory(c *fiber.Ctx) error {
	var payload dto.AdminBulkCategoryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.BulkCategory(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCategoryNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "category not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to move images")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to move images")
		}
	}

	return utils.SendSuccess(c, "images moved", response)
}

func (h *AdminImageHandler) bulkDelete(c *fiber.Ctx) error {
	var payload dto.AdminBulkDeleteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.BulkDelete(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete images")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete images")
	}

	return utils.SendSuccess(c, "images deleted", response)
}

func (h *AdminImageHandler) suggestCaption(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid image id")
	}

	response, err := h.service.SuggestCaption(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "image not found")
		case errors.Is(err, service.ErrCaptionsUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "caption suggestions are not configured")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to suggest caption")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to suggest caption")
		}
	}

	return utils.SendSuccess(c, "caption suggestion", response)
}
