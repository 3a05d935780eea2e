package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/middleware"
	"github.com/noah-isme/pbl-go-api/internal/service"
	"github.com/noah-isme/pbl-go-api/internal/utils"
)

// GradingHandler wires submission grading endpoints for teachers.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the submissions router group.
func (h *GradingHandler) Register(router fiber.Router) {
	teacher := middleware.AuthOptions{Role: middleware.RoleTeacher}
	router.Patch("/:id/grade", middleware.WithAuth(h.grade, teacher))
	router.Post("/:id/rubric-grade", middleware.WithAuth(h.rubricGrade, teacher))
}

func (h *GradingHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.service.Grade(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, id, err)
	}
	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *GradingHandler) rubricGrade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.RubricGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.service.GradeWithRubric(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, id, err)
	}
	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, submissionID uint, err error) error {
	switch {
	case isValidationError(err):
		return validationFailed(c, err)
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSubmissionAlreadyGraded):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRubricIncomplete), errors.Is(err, service.ErrUnknownCriteria):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Uint("submission_id", submissionID).Msg("failed to grade submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to grade submission")
	}
}
