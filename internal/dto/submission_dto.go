package dto

import (
	"time"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

// GradeSubmissionRequest grades a submission directly with a 0-100 score.
type GradeSubmissionRequest struct {
	Grade    *int   `json:"grade" validate:"required,gte=0,lte=100"`
	Feedback string `json:"feedback" validate:"max=5000"`
}

// RubricGradeRequest grades a submission from per-criterion levels.
type RubricGradeRequest struct {
	Levels   map[uint]int `json:"levels" validate:"required,min=1,dive,gte=1,lte=4"`
	Feedback string       `json:"feedback" validate:"max=5000"`
}

// EvaluationResponse serializes a per-criterion rubric evaluation.
type EvaluationResponse struct {
	CriteriaID uint    `json:"criteria_id"`
	Level      int     `json:"level"`
	Score      float64 `json:"score"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID              uint                 `json:"id"`
	ProjectID       uint                 `json:"project_id"`
	StudentID       uint                 `json:"student_id"`
	Status          string               `json:"status"`
	Grade           *int                 `json:"grade"`
	TeacherFeedback string               `json:"teacher_feedback"`
	GradedBy        *uint                `json:"graded_by"`
	GradedAt        *time.Time           `json:"graded_at"`
	Evaluations     []EvaluationResponse `json:"evaluations"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	Student         *StudentLite         `json:"student,omitempty"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	XP    int    `json:"xp"`
	Level int    `json:"level"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:              model.ID,
		ProjectID:       model.ProjectID,
		StudentID:       model.StudentID,
		Status:          model.Status,
		Grade:           model.Grade,
		TeacherFeedback: model.TeacherFeedback,
		GradedBy:        model.GradedBy,
		GradedAt:        model.GradedAt,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
		Evaluations:     make([]EvaluationResponse, 0, len(model.Evaluations)),
	}

	for _, evaluation := range model.Evaluations {
		response.Evaluations = append(response.Evaluations, EvaluationResponse{
			CriteriaID: evaluation.CriteriaID,
			Level:      evaluation.Level,
			Score:      evaluation.Score,
		})
	}

	if model.Student.ID != 0 {
		response.Student = &StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			XP:    model.Student.XP,
			Level: model.Student.Level,
		}
	}

	return response
}
