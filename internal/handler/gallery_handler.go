package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/service"
	"github.com/noah-isme/lumina-api/internal/utils"
)

// GalleryHandler exposes the public read-only gallery endpoints.
type GalleryHandler struct {
	service service.GalleryService
	logger  zerolog.Logger
}

// NewGalleryHandler constructs the handler.
func NewGalleryHandler(service service.GalleryService, logger zerolog.Logger) *GalleryHandler {
	return &GalleryHandler{
		service: service,
		logger:  logger.With().Str("component", "gallery_handler").Logger(),
	}
}

// Register attaches gallery routes to the router group.
func (h *GalleryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

func (h *GalleryHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.GalleryListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	}
	if tags := c.Query("tags"); tags != "" {
		req.Tags = splitAndTrim(tags)
	}
	if categoryID, err := parseQueryInt(c, "category_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
	} else if categoryID > 0 {
		id := uint(categoryID)
		req.CategoryID = &id
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list gallery")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list gallery")
	}

	return utils.SendSuccess(c, "gallery", response)
}

func (h *GalleryHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid image id")
	}

	item, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "image not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load gallery image")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load image")
	}

	return utils.SendSuccess(c, "image", item)
}
