package dto

import "github.com/noah-isme/pbl-go-api/internal/models"

// CompetencyItem aligns a project with one BNCC competency.
type CompetencyItem struct {
	CompetencyCode string `json:"competency_code" validate:"required,max=32"`
	Coverage       int    `json:"coverage" validate:"gte=0,lte=100"`
}

// ReplaceCompetenciesRequest replaces every competency link of a project.
type ReplaceCompetenciesRequest struct {
	Competencies []CompetencyItem `json:"competencies" validate:"dive"`
}

// PlanningRequest saves the curriculum plan of a project.
type PlanningRequest struct {
	Plan string `json:"plan" validate:"required,min=3"`
}

// CompetencyResponse serializes a competency link.
type CompetencyResponse struct {
	CompetencyCode string `json:"competency_code"`
	Coverage       int    `json:"coverage"`
}

// PlanningResponse serializes a project plan.
type PlanningResponse struct {
	ProjectID uint   `json:"project_id"`
	Plan      string `json:"plan"`
}

// NewCompetencyResponseSlice converts competency links into DTOs.
func NewCompetencyResponseSlice(items []models.ProjectCompetency) []CompetencyResponse {
	responses := make([]CompetencyResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, CompetencyResponse{
			CompetencyCode: item.CompetencyCode,
			Coverage:       item.Coverage,
		})
	}
	return responses
}
