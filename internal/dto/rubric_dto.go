package dto

import "github.com/noah-isme/pbl-go-api/internal/models"

// RubricCriteriaRequest creates or replaces a rubric criterion.
type RubricCriteriaRequest struct {
	Criterion string `json:"criterion" validate:"required,min=2,max=255"`
	Weight    int    `json:"weight" validate:"gte=0,lte=100"`
	Level1    string `json:"level1" validate:"required"`
	Level2    string `json:"level2" validate:"required"`
	Level3    string `json:"level3" validate:"required"`
	Level4    string `json:"level4" validate:"required"`
}

// RubricCriteriaUpdateRequest patches a rubric criterion.
type RubricCriteriaUpdateRequest struct {
	Criterion *string `json:"criterion" validate:"omitempty,min=2,max=255"`
	Weight    *int    `json:"weight" validate:"omitempty,gte=0,lte=100"`
	Level1    *string `json:"level1"`
	Level2    *string `json:"level2"`
	Level3    *string `json:"level3"`
	Level4    *string `json:"level4"`
}

// WeightCheckRequest asks whether a proposed weight keeps the rubric within 100%.
// Overrides carries other unsaved weights the client is editing locally.
type WeightCheckRequest struct {
	CriteriaID     uint         `json:"criteria_id"`
	ProposedWeight int          `json:"proposed_weight" validate:"gte=0,lte=100"`
	Overrides      map[uint]int `json:"overrides" validate:"omitempty,dive,gte=0,lte=100"`
}

// WeightCheckResponse reports the recomputed rubric total.
type WeightCheckResponse struct {
	OK    bool `json:"ok"`
	Total int  `json:"total"`
}

// GradePreviewRequest carries the levels selected so far, keyed by criteria id.
type GradePreviewRequest struct {
	Levels map[uint]int `json:"levels" validate:"omitempty,dive,gte=1,lte=4"`
}

// GradePreviewResponse reports a possibly partial rubric grade.
type GradePreviewResponse struct {
	Grade             int  `json:"grade"`
	AllCriteriaScored bool `json:"all_criteria_scored"`
}

// RubricCriteriaResponse serializes a rubric criterion.
type RubricCriteriaResponse struct {
	ID        uint   `json:"id"`
	ProjectID uint   `json:"project_id"`
	Criterion string `json:"criterion"`
	Weight    int    `json:"weight"`
	Level1    string `json:"level1"`
	Level2    string `json:"level2"`
	Level3    string `json:"level3"`
	Level4    string `json:"level4"`
}

// RubricResponse lists a project's criteria along with the weight balance.
type RubricResponse struct {
	ProjectID   uint                     `json:"project_id"`
	Criteria    []RubricCriteriaResponse `json:"criteria"`
	TotalWeight int                      `json:"total_weight"`
	Balanced    bool                     `json:"balanced"`
}

// NewRubricCriteriaResponse converts a rubric criterion into a DTO.
func NewRubricCriteriaResponse(model models.RubricCriteria) RubricCriteriaResponse {
	return RubricCriteriaResponse{
		ID:        model.ID,
		ProjectID: model.ProjectID,
		Criterion: model.Criterion,
		Weight:    model.Weight,
		Level1:    model.Level1,
		Level2:    model.Level2,
		Level3:    model.Level3,
		Level4:    model.Level4,
	}
}

// NewRubricResponse builds the rubric view for a project.
func NewRubricResponse(projectID uint, criteria []models.RubricCriteria) RubricResponse {
	items := make([]RubricCriteriaResponse, 0, len(criteria))
	total := 0
	for _, item := range criteria {
		items = append(items, NewRubricCriteriaResponse(item))
		total += item.Weight
	}
	return RubricResponse{
		ProjectID:   projectID,
		Criteria:    items,
		TotalWeight: total,
		Balanced:    total == models.MaxRubricWeight,
	}
}
