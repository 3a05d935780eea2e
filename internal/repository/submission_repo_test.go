package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

func TestSubmissionRepositorySaveGradeOnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	submission := models.Submission{ProjectID: 1, StudentID: 1, Content: "Maquete", Status: models.SubmissionStatusSubmitted}
	require.NoError(t, db.Create(&submission).Error)

	gradedAt := time.Now()
	first, second := 80, 30
	submission.Grade = &first
	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &gradedAt
	require.NoError(t, repo.SaveGrade(ctx, &submission, []models.Evaluation{{CriteriaID: 1, Level: 4, Score: 40}}))

	stale := submission
	stale.Grade = &second
	err := repo.SaveGrade(ctx, &stale, []models.Evaluation{{CriteriaID: 1, Level: 1, Score: 10}})
	require.ErrorIs(t, err, ErrGradeAlreadySet)

	stored, err := repo.GetByID(ctx, submission.ID)
	require.NoError(t, err)
	require.Equal(t, 80, *stored.Grade)
	require.Len(t, stored.Evaluations, 1)
	require.Equal(t, 4, stored.Evaluations[0].Level)
}
