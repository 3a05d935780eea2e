package models

import "time"

// Rubric level bounds. Each level is worth LevelPercentStep percent attainment.
const (
	RubricLevelMin   = 1
	RubricLevelMax   = 4
	LevelPercentStep = 25
	MaxRubricWeight  = 100
)

// RubricCriteria is a weighted grading dimension attached to a project.
type RubricCriteria struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	Criterion string    `gorm:"size:255;not null" json:"criterion"`
	Weight    int       `gorm:"not null" json:"weight"`
	Level1    string    `gorm:"type:text" json:"level1"`
	Level2    string    `gorm:"type:text" json:"level2"`
	Level3    string    `gorm:"type:text" json:"level3"`
	Level4    string    `gorm:"type:text" json:"level4"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name so it reads naturally in SQL.
func (RubricCriteria) TableName() string {
	return "rubric_criteria"
}

// Evaluation records the level a teacher selected for one criterion of a submission.
type Evaluation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;uniqueIndex:idx_evaluation_submission_criteria" json:"submission_id"`
	CriteriaID   uint      `gorm:"not null;uniqueIndex:idx_evaluation_submission_criteria" json:"criteria_id"`
	Level        int       `gorm:"not null" json:"level"`
	Score        float64   `gorm:"not null" json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}
