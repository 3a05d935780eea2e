package dto

import (
	"time"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

// TrackProgressRequest asks the engine to advance a student's progress on an achievement.
// Increment defaults to 1. Total, when present, overrides any previously recorded threshold.
type TrackProgressRequest struct {
	StudentID     uint   `json:"student_id" validate:"required,gt=0"`
	AchievementID string `json:"achievement_id" validate:"required,max=120"`
	Increment     int    `json:"increment" validate:"omitempty,gte=1"`
	Total         *int   `json:"total" validate:"omitempty,gte=1"`
}

// AdjustXPRequest applies a manual XP delta to a student.
type AdjustXPRequest struct {
	Delta  int    `json:"delta" validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,min=3,max=255"`
}

// UnlockedAchievementResponse describes one achievement unlocked during an operation.
type UnlockedAchievementResponse struct {
	AchievementID string `json:"achievement_id"`
	Title         string `json:"title"`
	XPAwarded     int    `json:"xp_awarded"`
}

// TrackProgressResponse reports the effect of a progress event.
// Outcome tells a no-op for an unlocked pair apart from a no-op for an unknown achievement.
type TrackProgressResponse struct {
	Unlocked     bool                          `json:"unlocked"`
	XPAwarded    int                           `json:"xp_awarded"`
	Outcome      string                        `json:"outcome"`
	Progress     int                           `json:"progress"`
	Total        int                           `json:"total"`
	StudentXP    *int                          `json:"student_xp,omitempty"`
	StudentLevel *int                          `json:"student_level,omitempty"`
	Cascade      []UnlockedAchievementResponse `json:"cascade"`
}

// XPAdjustmentResponse reports a student's XP after a manual adjustment.
type XPAdjustmentResponse struct {
	StudentID uint                          `json:"student_id"`
	XP        int                           `json:"xp"`
	Level     int                           `json:"level"`
	Cascade   []UnlockedAchievementResponse `json:"cascade"`
}

// AchievementResponse serializes a catalog entry.
type AchievementResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
	Icon        string `json:"icon"`
}

// StudentAchievementResponse is the persisted progress record shape.
type StudentAchievementResponse struct {
	ID            uint       `json:"id"`
	StudentID     uint       `json:"student_id"`
	AchievementID string     `json:"achievement_id"`
	Progress      int        `json:"progress"`
	Total         int        `json:"total"`
	Unlocked      bool       `json:"unlocked"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
	Title         string     `json:"title,omitempty"`
	Icon          string     `json:"icon,omitempty"`
	XP            int        `json:"xp,omitempty"`
}

// StudentProfileResponse summarizes a student's gamification state.
type StudentProfileResponse struct {
	StudentID     uint                         `json:"student_id"`
	Name          string                       `json:"name"`
	XP            int                          `json:"xp"`
	Level         int                          `json:"level"`
	XPToNextLevel int                          `json:"xp_to_next_level"`
	Unlocked      []StudentAchievementResponse `json:"unlocked"`
	InProgress    []StudentAchievementResponse `json:"in_progress"`
	CacheHit      bool                         `json:"cache_hit"`
}

// NewAchievementResponse converts an achievement model into a DTO.
func NewAchievementResponse(model models.Achievement) AchievementResponse {
	return AchievementResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		XP:          model.XP,
		Icon:        model.Icon,
	}
}

// NewStudentAchievementResponse converts a progress record into a DTO.
func NewStudentAchievementResponse(model models.StudentAchievement) StudentAchievementResponse {
	response := StudentAchievementResponse{
		ID:            model.ID,
		StudentID:     model.StudentID,
		AchievementID: model.AchievementID,
		Progress:      model.Progress,
		Total:         model.Total,
		Unlocked:      model.Unlocked,
		UnlockedAt:    model.UnlockedAt,
	}
	if model.Achievement.ID != "" {
		response.Title = model.Achievement.Title
		response.Icon = model.Achievement.Icon
		response.XP = model.Achievement.XP
	}
	return response
}
