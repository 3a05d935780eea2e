package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures auditable events triggered by teachers and by the gamification engine.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   string            `gorm:"size:120" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

// All lists every model managed by migrations.
func All() []interface{} {
	return []interface{}{
		&Student{},
		&Achievement{},
		&StudentAchievement{},
		&Project{},
		&ProjectPlanning{},
		&ProjectCompetency{},
		&Event{},
		&RubricCriteria{},
		&Submission{},
		&Evaluation{},
		&ActivityLog{},
	}
}
