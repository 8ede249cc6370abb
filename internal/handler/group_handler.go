package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/observability"
	"github.com/aulagest/aulagest-api/internal/service"
	"github.com/aulagest/aulagest-api/internal/utils"
)

// GroupHandler wires the roster endpoints. Create and update both accept
// a full target state; the service converges storage to it.
type GroupHandler struct {
	service service.RosterService
	logger  zerolog.Logger
}

// NewGroupHandler constructs the handler.
func NewGroupHandler(service service.RosterService, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		service: service,
		logger:  logger.With().Str("component", "group_handler").Logger(),
	}
}

// Register attaches roster endpoints to the router group.
func (h *GroupHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Post("/", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *GroupHandler) list(c *fiber.Ctx) error {
	groups, err := h.service.ListGroups(c.Context(), actorFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list groups")
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "groups retrieved", groups)
}

func (h *GroupHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	group, err := h.service.GetGroup(c.Context(), actorFromContext(c), id)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "group retrieved", group)
}

func (h *GroupHandler) create(c *fiber.Ctx) error {
	var payload dto.RosterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	group, err := h.service.CreateGroup(c.Context(), actorFromContext(c), payload)
	if err != nil {
		observability.RosterSyncs().WithLabelValues("rejected").Inc()
		return utils.SendDomainError(c, err)
	}

	observability.RosterSyncs().WithLabelValues("applied").Inc()

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group created", group)
}

func (h *GroupHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.RosterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	group, err := h.service.UpdateGroup(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		observability.RosterSyncs().WithLabelValues("rejected").Inc()
		return utils.SendDomainError(c, err)
	}

	observability.RosterSyncs().WithLabelValues("applied").Inc()

	return utils.SendSuccess(c, "group updated", group)
}

func (h *GroupHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.DeleteGroup(c.Context(), actorFromContext(c), id); err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "group deleted", nil)
}
