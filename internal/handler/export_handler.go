package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/service"
	"github.com/aulagest/aulagest-api/internal/utils"
)

// ExportHandler serves spreadsheet downloads of grading data.
type ExportHandler struct {
	service service.ExportService
	logger  zerolog.Logger
}

// NewExportHandler constructs the handler.
func NewExportHandler(service service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register attaches export endpoints to the router group.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("/grades", h.grades)
}

func (h *ExportHandler) grades(c *fiber.Ctx) error {
	var filter repository.SubmissionFilter

	practiceID, err := parseQueryUint(c, "practice_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid practice_id")
	}
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
	}
	filter.PracticeID = practiceID
	filter.StudentID = studentID

	content, filename, err := h.service.GradeSheet(c.Context(), actorFromContext(c), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to export grade sheet")
		return utils.SendDomainError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)

	return c.Send(content)
}
