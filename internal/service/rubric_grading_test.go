package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

func rubricOf(weights ...int) []models.RubricCriteria {
	criteria := make([]models.RubricCriteria, 0, len(weights))
	for i, weight := range weights {
		criteria = append(criteria, models.RubricCriteria{ID: uint(i + 1), Weight: weight})
	}
	return criteria
}

func TestValidateWeightChange(t *testing.T) {
	criteria := rubricOf(40, 30, 30)

	cases := []struct {
		name       string
		criteriaID uint
		proposed   int
		want       WeightCheck
	}{
		{name: "raise existing above limit", criteriaID: 1, proposed: 50, want: WeightCheck{OK: false, Total: 110}},
		{name: "lower existing", criteriaID: 2, proposed: 10, want: WeightCheck{OK: true, Total: 80}},
		{name: "same weight", criteriaID: 3, proposed: 30, want: WeightCheck{OK: true, Total: 100}},
		{name: "new criterion", criteriaID: 0, proposed: 5, want: WeightCheck{OK: false, Total: 105}},
		{name: "unknown id counts as new", criteriaID: 99, proposed: 0, want: WeightCheck{OK: true, Total: 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ValidateWeightChange(criteria, tc.criteriaID, tc.proposed))
		})
	}
}

func TestValidateWeightChangeEmptyRubric(t *testing.T) {
	require.Equal(t, WeightCheck{OK: true, Total: 100}, ValidateWeightChange(nil, 0, 100))
	require.Equal(t, WeightCheck{OK: false, Total: 101}, ValidateWeightChange(nil, 3, 101))
}

func TestCalculateGrade(t *testing.T) {
	criteria := rubricOf(40, 30, 30)

	require.Equal(t, 100, CalculateGrade(criteria, map[uint]int{1: 4, 2: 4, 3: 4}))
	require.Equal(t, 25, CalculateGrade(criteria, map[uint]int{1: 1, 2: 1, 3: 1}))
	// 40*0.75 + 30*0.5 + 30*1.0
	require.Equal(t, 75, CalculateGrade(criteria, map[uint]int{1: 3, 2: 2, 3: 4}))
	require.Equal(t, 0, CalculateGrade(criteria, map[uint]int{}))
	require.Equal(t, 0, CalculateGrade(nil, map[uint]int{1: 4}))
}

func TestCalculateGradeRoundsHalfAwayFromZero(t *testing.T) {
	// 10*0.25 + 90*0.5 = 47.5
	require.Equal(t, 48, CalculateGrade(rubricOf(10, 90), map[uint]int{1: 1, 2: 2}))
}

func TestCalculateGradePartialIsNotRenormalized(t *testing.T) {
	criteria := rubricOf(50, 50)
	require.Equal(t, 50, CalculateGrade(criteria, map[uint]int{1: 4}))
	require.False(t, AllCriteriaScored(criteria, map[uint]int{1: 4}))
	require.True(t, AllCriteriaScored(criteria, map[uint]int{1: 4, 2: 1}))
}

func TestCalculateGradeIgnoresOutOfRangeLevels(t *testing.T) {
	criteria := rubricOf(50, 50)
	require.Equal(t, 50, CalculateGrade(criteria, map[uint]int{1: 4, 2: 7}))
	require.Zero(t, CriterionScore(50, 0))
	require.Equal(t, 37.5, CriterionScore(50, 3))
}
