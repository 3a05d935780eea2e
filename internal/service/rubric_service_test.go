package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/models"
	"github.com/noah-isme/pbl-go-api/internal/repository"
)

func newRubricServiceForTest(t *testing.T) (RubricService, *memoryActivityRepo, func() []models.RubricCriteria, uint) {
	t.Helper()
	db := newTestDB(t)
	project := seedProject(t, db, 10, "Horta Comunitária")
	seedCriteria(t, db, project.ID, "Pesquisa", 40)
	seedCriteria(t, db, project.ID, "Colaboração", 30)
	seedCriteria(t, db, project.ID, "Apresentação", 30)

	activity := &memoryActivityRepo{}
	svc := NewRubricService(
		repository.NewRubricRepository(db),
		repository.NewProjectRepository(db),
		testValidator(),
		NewActivityService(activity, testLogger()),
		testLogger(),
	)
	load := func() []models.RubricCriteria {
		var rows []models.RubricCriteria
		require.NoError(t, db.Where("project_id = ?", project.ID).Order("id ASC").Find(&rows).Error)
		return rows
	}
	return svc, activity, load, project.ID
}

func newCriteriaRequest(name string, weight int) dto.RubricCriteriaRequest {
	return dto.RubricCriteriaRequest{
		Criterion: name,
		Weight:    weight,
		Level1:    "Não atende",
		Level2:    "Atende parcialmente",
		Level3:    "Atende",
		Level4:    "Supera",
	}
}

func TestRubricServiceGetRubric(t *testing.T) {
	svc, _, _, projectID := newRubricServiceForTest(t)

	rubric, err := svc.GetRubric(context.Background(), projectID)
	require.NoError(t, err)
	require.Len(t, rubric.Criteria, 3)
	require.Equal(t, 100, rubric.TotalWeight)
	require.True(t, rubric.Balanced)

	_, err = svc.GetRubric(context.Background(), 999)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestRubricServiceCheckWeight(t *testing.T) {
	svc, _, load, projectID := newRubricServiceForTest(t)
	first := load()[0]

	check, err := svc.CheckWeight(context.Background(), projectID, dto.WeightCheckRequest{CriteriaID: first.ID, ProposedWeight: 50})
	require.NoError(t, err)
	require.Equal(t, dto.WeightCheckResponse{OK: false, Total: 110}, check)

	second := load()[1]
	check, err = svc.CheckWeight(context.Background(), projectID, dto.WeightCheckRequest{
		CriteriaID:     first.ID,
		ProposedWeight: 50,
		Overrides:      map[uint]int{second.ID: 20},
	})
	require.NoError(t, err)
	require.Equal(t, dto.WeightCheckResponse{OK: true, Total: 100}, check)
}

func TestRubricServiceUpdateRejectsOverflowAndKeepsStore(t *testing.T) {
	svc, activity, load, projectID := newRubricServiceForTest(t)
	before := load()

	weight := 50
	_, err := svc.UpdateCriteria(context.Background(), projectID, before[0].ID, dto.RubricCriteriaUpdateRequest{Weight: &weight}, teacherActor)
	var exceeded *WeightExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, 110, exceeded.Total)

	after := load()
	require.Equal(t, before[0].Weight, after[0].Weight)
	require.Empty(t, activity.entries)
}

func TestRubricServiceUpdateWithinLimit(t *testing.T) {
	svc, activity, load, projectID := newRubricServiceForTest(t)
	target := load()[2]

	weight := 10
	name := "  <b>Apresentação oral</b> "
	updated, err := svc.UpdateCriteria(context.Background(), projectID, target.ID, dto.RubricCriteriaUpdateRequest{Weight: &weight, Criterion: &name}, teacherActor)
	require.NoError(t, err)
	require.Equal(t, 10, updated.Weight)
	require.Equal(t, "Apresentação oral", updated.Criterion)
	require.Equal(t, target.Level4, updated.Level4)
	require.Equal(t, 10, load()[2].Weight)

	require.Equal(t, []string{"rubric.criteria_updated"}, activity.actions())
	require.EqualValues(t, 80, activity.entries[0].Metadata["total_weight"])
}

func TestRubricServiceUpdateUnknownCriteria(t *testing.T) {
	svc, _, _, projectID := newRubricServiceForTest(t)

	weight := 10
	_, err := svc.UpdateCriteria(context.Background(), projectID, 999, dto.RubricCriteriaUpdateRequest{Weight: &weight}, teacherActor)
	require.ErrorIs(t, err, ErrCriteriaNotFound)
}

func TestRubricServiceCreate(t *testing.T) {
	svc, _, load, projectID := newRubricServiceForTest(t)

	_, err := svc.CreateCriteria(context.Background(), projectID, newCriteriaRequest("Criatividade", 10), teacherActor)
	var exceeded *WeightExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, 110, exceeded.Total)
	require.Len(t, load(), 3)

	created, err := svc.CreateCriteria(context.Background(), projectID, newCriteriaRequest("Criatividade", 0), teacherActor)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, projectID, created.ProjectID)
	require.Len(t, load(), 4)
}

func TestRubricServiceCreateValidation(t *testing.T) {
	svc, _, _, projectID := newRubricServiceForTest(t)

	_, err := svc.CreateCriteria(context.Background(), projectID, newCriteriaRequest("Criatividade", 120), teacherActor)
	require.Error(t, err)
	require.True(t, isValidatorError(err))

	_, err = svc.CreateCriteria(context.Background(), projectID, newCriteriaRequest("<script></script>", 0), teacherActor)
	require.ErrorIs(t, err, ErrEmptyContent)

	_, err = svc.CreateCriteria(context.Background(), 999, newCriteriaRequest("Criatividade", 0), teacherActor)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestRubricServiceDelete(t *testing.T) {
	svc, activity, load, projectID := newRubricServiceForTest(t)
	target := load()[0]

	require.NoError(t, svc.DeleteCriteria(context.Background(), projectID, target.ID, teacherActor))
	require.Len(t, load(), 2)
	require.Equal(t, []string{"rubric.criteria_deleted"}, activity.actions())

	err := svc.DeleteCriteria(context.Background(), projectID, target.ID, teacherActor)
	require.ErrorIs(t, err, ErrCriteriaNotFound)
}
