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

// AchievementHandler exposes achievement progress, XP and profile endpoints.
type AchievementHandler struct {
	service service.GamificationService
	logger  zerolog.Logger
}

// NewAchievementHandler constructs the handler.
func NewAchievementHandler(service service.GamificationService, logger zerolog.Logger) *AchievementHandler {
	return &AchievementHandler{
		service: service,
		logger:  logger.With().Str("component", "achievement_handler").Logger(),
	}
}

// Register attaches achievement routes to the router group.
func (h *AchievementHandler) Register(router fiber.Router) {
	staff := middleware.AuthOptions{Role: middleware.AuthRoleStaff}
	authenticated := middleware.AuthOptions{Role: middleware.AuthRoleAny}

	router.Get("/", middleware.WithAuth(h.list, authenticated))
	router.Post("/progress", middleware.WithAuth(h.trackProgress, staff))
	router.Get("/students/:studentId", middleware.WithAuth(h.profile, authenticated))
	router.Post("/students/:studentId/xp", middleware.WithAuth(h.adjustXP, staff))
}

func (h *AchievementHandler) list(c *fiber.Ctx) error {
	achievements, err := h.service.ListAchievements(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list achievements")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list achievements")
	}
	return utils.OK(c, achievements, "achievements retrieved", fiber.Map{"total": len(achievements)})
}

func (h *AchievementHandler) trackProgress(c *fiber.Ctx) error {
	var payload dto.TrackProgressRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.TrackProgress(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to track progress")
	}

	return utils.SendSuccess(c, progressMessage(result.Outcome), result)
}

func (h *AchievementHandler) profile(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student identifier")
	}
	if !middleware.IsStaff(userRoleFromContext(c)) && userIDFromContext(c) != studentID {
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	profile, err := h.service.GetProfile(c.UserContext(), studentID)
	if err != nil {
		return h.handleError(c, err, "failed to load student profile")
	}
	return utils.SendSuccess(c, "student profile retrieved", profile)
}

func (h *AchievementHandler) adjustXP(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student identifier")
	}

	var payload dto.AdjustXPRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.AdjustXP(c.UserContext(), studentID, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to adjust xp")
	}
	return utils.SendSuccess(c, "student xp adjusted", result)
}

func (h *AchievementHandler) handleError(c *fiber.Ctx, err error, message string) error {
	switch {
	case isValidationError(err):
		return validationFailed(c, err)
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}

func progressMessage(outcome string) string {
	switch service.TrackOutcome(outcome) {
	case service.OutcomeUnlocked:
		return "achievement unlocked"
	case service.OutcomeStudentMissing:
		return "achievement unlocked; student not found, xp not applied"
	case service.OutcomeAlreadyUnlocked:
		return "achievement already unlocked"
	case service.OutcomeAchievementNotFound:
		return "achievement not found"
	default:
		return "progress recorded"
	}
}
