package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/service"
	"github.com/noah-isme/lumina-api/internal/utils"
)

const dateLayout = "2006-01-02"

// AdminActivityHandler exposes the activity log admin endpoints.
type AdminActivityHandler struct {
	service service.ActivityQueryService
	logger  zerolog.Logger
}

// NewAdminActivityHandler constructs the handler.
func NewAdminActivityHandler(service service.ActivityQueryService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/export", h.export)
	router.Get("/stats", h.stats)
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	req, err := parseActivityListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity logs")
	}

	return utils.SendSuccess(c, "activity logs", response)
}

func (h *AdminActivityHandler) export(c *fiber.Ctx) error {
	req, err := parseActivityListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	export, err := h.service.Export(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export activity logs")
	}

	return utils.SendAttachment(c, export.ContentType, export.FileName, export.Data)
}

func (h *AdminActivityHandler) stats(c *fiber.Ctx) error {
	response, err := h.service.Stats(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to aggregate activity stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to aggregate activity stats")
	}

	return utils.SendSuccess(c, "activity stats", response)
}

func parseActivityListRequest(c *fiber.Ctx) (dto.ActivityListRequest, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.ActivityListRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return dto.ActivityListRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid page size")
	}
	actorID, err := parseQueryInt(c, "actor_id")
	if err != nil {
		return dto.ActivityListRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid actor id")
	}

	req := dto.ActivityListRequest{
		Page:        page,
		PageSize:    pageSize,
		Search:      c.Query("search"),
		Action:      c.Query("action"),
		FlaggedOnly: c.QueryBool("flagged"),
	}
	if actorID > 0 {
		req.ActorID = uint(actorID)
	}

	if from := strings.TrimSpace(c.Query("from")); from != "" {
		parsed, err := time.Parse(dateLayout, from)
		if err != nil {
			return dto.ActivityListRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
		}
		req.From = &parsed
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		parsed, err := time.Parse(dateLayout, to)
		if err != nil {
			return dto.ActivityListRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
		}
		// Push to end of day so the bound stays inclusive.
		endOfDay := parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		req.To = &endOfDay
	}

	return req, nil
}
