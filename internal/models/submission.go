package models

import "time"

// Submission represents work a student delivered for a project.
type Submission struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	ProjectID       uint         `gorm:"not null;index" json:"project_id"`
	StudentID       uint         `gorm:"not null;index" json:"student_id"`
	Content         string       `gorm:"type:text" json:"content"`
	Status          string       `gorm:"size:32;not null" json:"status"`
	Grade           *int         `json:"grade"`
	TeacherFeedback string       `gorm:"type:text" json:"teacher_feedback"`
	GradedBy        *uint        `json:"graded_by"`
	GradedAt        *time.Time   `json:"graded_at"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Project         Project      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student         Student      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Evaluations     []Evaluation `json:"-"`
}

const (
	// SubmissionStatusSubmitted indicates the submission has been delivered but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
)

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Grade != nil
}
