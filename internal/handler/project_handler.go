package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/middleware"
	"github.com/noah-isme/pbl-go-api/internal/service"
	"github.com/noah-isme/pbl-go-api/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProjectHandler exposes project alignment and grade export endpoints.
type ProjectHandler struct {
	projects service.ProjectService
	reports  service.ReportService
	logger   zerolog.Logger
}

// NewProjectHandler constructs the handler.
func NewProjectHandler(projects service.ProjectService, reports service.ReportService, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		reports:  reports,
		logger:   logger.With().Str("component", "project_handler").Logger(),
	}
}

// Register attaches project routes to the projects router group.
func (h *ProjectHandler) Register(router fiber.Router) {
	teacher := middleware.AuthOptions{Role: middleware.RoleTeacher}
	staff := middleware.AuthOptions{Role: middleware.AuthRoleStaff}

	router.Put("/:projectId/competencies", middleware.WithAuth(h.replaceCompetencies, teacher))
	router.Put("/:projectId/planning", middleware.WithAuth(h.savePlanning, teacher))
	router.Get("/:projectId/grades/export", middleware.WithAuth(h.exportGrades, staff))
}

func (h *ProjectHandler) replaceCompetencies(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project identifier")
	}

	var payload dto.ReplaceCompetenciesRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	competencies, err := h.projects.ReplaceCompetencies(c.UserContext(), projectID, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "project competencies replaced", competencies)
}

func (h *ProjectHandler) savePlanning(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project identifier")
	}

	var payload dto.PlanningRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	planning, err := h.projects.SavePlanning(c.UserContext(), projectID, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "project planning saved", planning)
}

func (h *ProjectHandler) exportGrades(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project identifier")
	}

	report, err := h.reports.ExportProjectGrades(c.UserContext(), projectID)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.Filename))
	return c.Status(fiber.StatusOK).Send(report.Content)
}

func (h *ProjectHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return validationFailed(c, err)
	case errors.Is(err, service.ErrEmptyContent):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "project not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("project request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
