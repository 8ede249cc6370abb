package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulagest/aulagest-api/internal/service"
	"github.com/aulagest/aulagest-api/internal/utils"
)

// ActivityHandler serves the audit log feed.
type ActivityHandler struct {
	recorder service.ActivityRecorder
	logger   zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(recorder service.ActivityRecorder, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		recorder: recorder,
		logger:   logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity endpoints to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/", h.recent)
}

func (h *ActivityHandler) recent(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	entries, err := h.recorder.Recent(c.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activity entries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity entries")
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
