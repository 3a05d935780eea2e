package models

import "time"

// Achievement is a catalog entry with a fixed XP reward.
type Achievement struct {
	ID          string    `gorm:"primaryKey;size:120" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	XP          int       `gorm:"not null" json:"xp"`
	Icon        string    `gorm:"size:64" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StudentAchievement tracks a student's progress against one achievement.
// Unlocked only ever transitions from false to true.
type StudentAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	StudentID     uint        `gorm:"not null;uniqueIndex:idx_student_achievement" json:"student_id"`
	AchievementID string      `gorm:"size:120;not null;uniqueIndex:idx_student_achievement" json:"achievement_id"`
	Progress      int         `gorm:"not null;default:0" json:"progress"`
	Total         int         `gorm:"not null;default:1" json:"total"`
	Unlocked      bool        `gorm:"not null;default:false" json:"unlocked"`
	UnlockedAt    *time.Time  `json:"unlocked_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Achievement   Achievement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
