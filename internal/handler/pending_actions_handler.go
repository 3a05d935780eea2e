package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pbl-go-api/internal/middleware"
	"github.com/noah-isme/pbl-go-api/internal/service"
	"github.com/noah-isme/pbl-go-api/internal/utils"
)

// PendingActionsHandler exposes the teacher follow-up summary.
type PendingActionsHandler struct {
	service service.PendingActionsService
	logger  zerolog.Logger
}

// NewPendingActionsHandler constructs the handler.
func NewPendingActionsHandler(service service.PendingActionsService, logger zerolog.Logger) *PendingActionsHandler {
	return &PendingActionsHandler{
		service: service,
		logger:  logger.With().Str("component", "pending_actions_handler").Logger(),
	}
}

// Register attaches the endpoint to the teachers router group.
func (h *PendingActionsHandler) Register(router fiber.Router) {
	router.Get("/me/pending-actions", middleware.WithAuth(h.get, middleware.AuthOptions{Role: middleware.RoleTeacher}))
}

func (h *PendingActionsHandler) get(c *fiber.Ctx) error {
	teacherID := userIDFromContext(c)
	if teacherID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user context")
	}

	summary, err := h.service.GetPendingActions(c.UserContext(), teacherID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("teacher_id", teacherID).Msg("failed to load pending actions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load pending actions")
	}
	return utils.SendSuccess(c, "pending actions retrieved", summary)
}
