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

// RubricHandler manages a project's rubric criteria.
type RubricHandler struct {
	rubrics service.RubricService
	grading service.GradingService
	logger  zerolog.Logger
}

// NewRubricHandler constructs the handler.
func NewRubricHandler(rubrics service.RubricService, grading service.GradingService, logger zerolog.Logger) *RubricHandler {
	return &RubricHandler{
		rubrics: rubrics,
		grading: grading,
		logger:  logger.With().Str("component", "rubric_handler").Logger(),
	}
}

// Register attaches rubric routes to the projects router group.
func (h *RubricHandler) Register(router fiber.Router) {
	teacher := middleware.AuthOptions{Role: middleware.RoleTeacher}
	authenticated := middleware.AuthOptions{Role: middleware.AuthRoleAny}

	router.Get("/:projectId/rubric", middleware.WithAuth(h.get, authenticated))
	router.Post("/:projectId/rubric", middleware.WithAuth(h.create, teacher))
	router.Post("/:projectId/rubric/validate", middleware.WithAuth(h.validate, teacher))
	router.Post("/:projectId/rubric/preview", middleware.WithAuth(h.preview, teacher))
	router.Patch("/:projectId/rubric/:criteriaId", middleware.WithAuth(h.update, teacher))
	router.Delete("/:projectId/rubric/:criteriaId", middleware.WithAuth(h.delete, teacher))
}

func (h *RubricHandler) get(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project identifier")
	}

	rubric, err := h.rubrics.GetRubric(c.UserContext(), projectID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "rubric retrieved", rubric)
}

func (h *RubricHandler) create(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project identifier")
	}

	var payload dto.RubricCriteriaRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	criteria, err := h.rubrics.CreateCriteria(c.UserContext(), projectID, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "rubric criteria created", criteria)
}

func (h *RubricHandler) update(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project identifier")
	}
	criteriaID, err := parseUintParam(c, "criteriaId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid criteria identifier")
	}

	var payload dto.RubricCriteriaUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	criteria, err := h.rubrics.UpdateCriteria(c.UserContext(), projectID, criteriaID, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "rubric criteria updated", criteria)
}

func (h *RubricHandler) delete(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project identifier")
	}
	criteriaID, err := parseUintParam(c, "criteriaId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid criteria identifier")
	}

	if err := h.rubrics.DeleteCriteria(c.UserContext(), projectID, criteriaID, activityActorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "rubric criteria deleted", nil)
}

func (h *RubricHandler) validate(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project identifier")
	}

	var payload dto.WeightCheckRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	check, err := h.rubrics.CheckWeight(c.UserContext(), projectID, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	if !check.OK {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "rubric weights exceed 100%", check)
	}
	return utils.SendSuccess(c, "rubric weights within limit", check)
}

func (h *RubricHandler) preview(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project identifier")
	}

	var payload dto.GradePreviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	preview, err := h.grading.PreviewRubricGrade(c.UserContext(), projectID, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "grade preview computed", preview)
}

func (h *RubricHandler) handleError(c *fiber.Ctx, err error) error {
	var exceeded *service.WeightExceededError
	switch {
	case isValidationError(err):
		return validationFailed(c, err)
	case errors.As(err, &exceeded):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, exceeded.Error(), dto.WeightCheckResponse{OK: false, Total: exceeded.Total})
	case errors.Is(err, service.ErrEmptyContent):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrCriteriaNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "rubric criteria not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("rubric request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
