package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/observability"
	"github.com/aulagest/aulagest-api/internal/service"
	"github.com/aulagest/aulagest-api/internal/utils"
)

// GradeHandler wires grade endpoints.
type GradeHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service service.GradingService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches grade endpoints to the router group.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *GradeHandler) list(c *fiber.Ctx) error {
	grades, err := h.service.ListGrades(c.Context(), actorFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list grades")
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "grades retrieved", grades)
}

func (h *GradeHandler) create(c *fiber.Ctx) error {
	var payload dto.GradeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	grade, err := h.service.CreateGrade(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	observability.GradesRecorded().Inc()

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "grade recorded", grade)
}

func (h *GradeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.GradeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	grade, err := h.service.UpdateGrade(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "grade updated", grade)
}

func (h *GradeHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.DeleteGrade(c.Context(), actorFromContext(c), id); err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "grade deleted", nil)
}
