package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/service"
	"github.com/aulagest/aulagest-api/internal/utils"
)

// ModuleHandler wires standalone module endpoints.
type ModuleHandler struct {
	service service.ModuleService
	logger  zerolog.Logger
}

// NewModuleHandler constructs the handler.
func NewModuleHandler(service service.ModuleService, logger zerolog.Logger) *ModuleHandler {
	return &ModuleHandler{
		service: service,
		logger:  logger.With().Str("component", "module_handler").Logger(),
	}
}

// Register attaches module endpoints to the router group.
func (h *ModuleHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ModuleHandler) list(c *fiber.Ctx) error {
	modules, err := h.service.List(c.Context(), actorFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list modules")
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "modules retrieved", dto.NewModuleResponseSlice(modules))
}

func (h *ModuleHandler) create(c *fiber.Ctx) error {
	var payload service.ModuleCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	module, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "module created", dto.NewModuleResponse(module))
}

func (h *ModuleHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload service.ModuleUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	module, err := h.service.Update(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "module updated", dto.NewModuleResponse(module))
}

func (h *ModuleHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	module, err := h.service.Delete(c.Context(), actorFromContext(c), id)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "module deleted", dto.NewModuleResponse(module))
}
