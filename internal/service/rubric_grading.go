package service

import (
	"math"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

// WeightCheck is the outcome of a proposed weight change.
type WeightCheck struct {
	OK    bool
	Total int
}

// ValidateWeightChange recomputes the rubric total with proposedWeight applied to criteriaID.
// An id that is not part of criteria counts as a new criterion.
func ValidateWeightChange(criteria []models.RubricCriteria, criteriaID uint, proposedWeight int) WeightCheck {
	total := 0
	found := false
	for _, item := range criteria {
		if item.ID == criteriaID && criteriaID != 0 {
			total += proposedWeight
			found = true
			continue
		}
		total += item.Weight
	}
	if !found {
		total += proposedWeight
	}
	return WeightCheck{OK: total <= models.MaxRubricWeight, Total: total}
}

// CriterionScore returns the weighted points one criterion contributes at level.
func CriterionScore(weight, level int) float64 {
	if level < models.RubricLevelMin || level > models.RubricLevelMax {
		return 0
	}
	return float64(level*models.LevelPercentStep) * float64(weight) / 100
}

// CalculateGrade converts the selected levels into a 0-100 grade. Unscored criteria
// contribute nothing and the result is never renormalized over the scored ones.
func CalculateGrade(criteria []models.RubricCriteria, levels map[uint]int) int {
	score := 0.0
	weightSeen := 0
	for _, item := range criteria {
		level, ok := levels[item.ID]
		if !ok || level < models.RubricLevelMin || level > models.RubricLevelMax {
			continue
		}
		score += CriterionScore(item.Weight, level)
		weightSeen += item.Weight
	}
	if weightSeen == 0 {
		return 0
	}
	return int(math.Round(score))
}

// AllCriteriaScored reports whether every criterion has a selected level.
func AllCriteriaScored(criteria []models.RubricCriteria, levels map[uint]int) bool {
	for _, item := range criteria {
		if _, ok := levels[item.ID]; !ok {
			return false
		}
	}
	return true
}
