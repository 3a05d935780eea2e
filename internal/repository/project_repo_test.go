package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

func TestProjectRepositoryIDSets(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	projects := []models.Project{{TeacherID: 1, Title: "A"}, {TeacherID: 1, Title: "B"}, {TeacherID: 2, Title: "C"}}
	require.NoError(t, db.Create(&projects).Error)

	require.NoError(t, repo.UpsertPlanning(ctx, &models.ProjectPlanning{ProjectID: projects[0].ID, Plan: "v1"}))
	require.NoError(t, repo.UpsertPlanning(ctx, &models.ProjectPlanning{ProjectID: projects[0].ID, Plan: "v2"}))
	require.NoError(t, repo.ReplaceCompetencies(ctx, projects[1].ID, []models.ProjectCompetency{
		{CompetencyCode: "EF09CI01", Coverage: 50},
		{CompetencyCode: "EF09CI02", Coverage: 50},
	}))

	owned, err := repo.ListByTeacher(ctx, 1)
	require.NoError(t, err)
	require.Len(t, owned, 2)

	ids := []uint{projects[0].ID, projects[1].ID}
	planned, err := repo.PlannedProjectIDs(ctx, ids)
	require.NoError(t, err)
	require.Equal(t, map[uint]struct{}{projects[0].ID: {}}, planned)

	aligned, err := repo.CompetencyProjectIDs(ctx, ids)
	require.NoError(t, err)
	require.Equal(t, map[uint]struct{}{projects[1].ID: {}}, aligned)

	empty, err := repo.PlannedProjectIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	var plans []models.ProjectPlanning
	require.NoError(t, db.Find(&plans).Error)
	require.Len(t, plans, 1)
	require.Equal(t, "v2", plans[0].Plan)
}

func TestProjectRepositoryReplaceCompetenciesClears(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := models.Project{TeacherID: 1, Title: "A"}
	require.NoError(t, db.Create(&project).Error)
	require.NoError(t, repo.ReplaceCompetencies(ctx, project.ID, []models.ProjectCompetency{{CompetencyCode: "EF09CI01"}}))
	require.NoError(t, repo.ReplaceCompetencies(ctx, project.ID, nil))

	var count int64
	require.NoError(t, db.Model(&models.ProjectCompetency{}).Count(&count).Error)
	require.Zero(t, count)
}
