package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulagest/aulagest-api/internal/service"
	"github.com/aulagest/aulagest-api/internal/utils"
)

// SeedHandler wires the fixture import endpoint.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs the handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register attaches seed endpoints to the router group.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/import", h.importDocument)
}

func (h *SeedHandler) importDocument(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")

	result, err := h.service.Import(c.Context(), actorFromContext(c), token, c.Body())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusNotFound, "seeding is disabled")
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid seed token")
		default:
			h.logger.Error().Err(err).Msg("seed import failed")
			return utils.SendDomainError(c, err)
		}
	}

	return utils.SendSuccess(c, "seed applied", result)
}
