package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/service"
	"github.com/aulagest/aulagest-api/internal/utils"
)

// PracticeHandler wires assignment definition endpoints.
type PracticeHandler struct {
	service service.PracticeService
	logger  zerolog.Logger
}

// NewPracticeHandler constructs the handler.
func NewPracticeHandler(service service.PracticeService, logger zerolog.Logger) *PracticeHandler {
	return &PracticeHandler{
		service: service,
		logger:  logger.With().Str("component", "practice_handler").Logger(),
	}
}

// Register attaches practice endpoints to the router group.
func (h *PracticeHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Post("/", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *PracticeHandler) list(c *fiber.Ctx) error {
	practices, err := h.service.List(c.Context(), actorFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list practices")
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "practices retrieved", practices)
}

func (h *PracticeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	practice, err := h.service.Get(c.Context(), actorFromContext(c), id)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "practice retrieved", practice)
}

func (h *PracticeHandler) create(c *fiber.Ctx) error {
	var payload dto.PracticeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	practice, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "practice created", practice)
}

func (h *PracticeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.PracticeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	practice, err := h.service.Update(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "practice updated", practice)
}

func (h *PracticeHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), actorFromContext(c), id); err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "practice deleted", nil)
}
