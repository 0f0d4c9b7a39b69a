package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/service"
	"github.com/noah-isme/lumina-api/internal/utils"
)

// AdminCategoryHandler exposes category management endpoints.
type AdminCategoryHandler struct {
	service service.AdminCategoryService
	logger  zerolog.Logger
}

// NewAdminCategoryHandler constructs the handler.
func NewAdminCategoryHandler(service service.AdminCategoryService, logger zerolog.Logger) *AdminCategoryHandler {
	return &AdminCategoryHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_category_handler").Logger(),
	}
}

// Register attaches category routes to the router group.
func (h *AdminCategoryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdminCategoryHandler) list(c *fiber.Ctx) error {
	response, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list categories")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list categories")
	}

	return utils.SendSuccess(c, "categories", response)
}

func (h *AdminCategoryHandler) create(c *fiber.Ctx) error {
	var payload dto.CategoryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Create(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create category")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create category")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "category created", response)
}

func (h *AdminCategoryHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
	}

	var payload dto.CategoryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Update(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCategoryNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "category not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update category")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update category")
		}
	}

	return utils.SendSuccess(c, "category updated", response)
}

func (h *AdminCategoryHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
	}

	if err := h.service.Delete(c.Context(), id, activityActorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "category not found")
		case errors.Is(err, service.ErrCategoryInUse):
			return utils.SendError(c, fiber.StatusConflict, "category still has images")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete category")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete category")
		}
	}

	return utils.SendSuccess(c, "category deleted", nil)
}
