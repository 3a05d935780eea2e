package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/models"
	"github.com/noah-isme/pbl-go-api/internal/repository"
)

func TestExportProjectGrades(t *testing.T) {
	f := newGradingFixture(t)

	pending := models.Submission{ProjectID: f.project.ID, StudentID: f.submission.StudentID, Status: models.SubmissionStatusSubmitted}
	require.NoError(t, f.db.Create(&pending).Error)

	_, err := f.svc.GradeWithRubric(context.Background(), f.submission.ID, dto.RubricGradeRequest{
		Levels:   f.levels(3, 2, 4),
		Feedback: "Bom",
	}, teacherActor)
	require.NoError(t, err)

	svc := NewReportService(
		repository.NewProjectRepository(f.db),
		repository.NewSubmissionRepository(f.db),
		repository.NewRubricRepository(f.db),
		testLogger(),
	)
	report, err := svc.ExportProjectGrades(context.Background(), f.project.ID)
	require.NoError(t, err)
	require.Contains(t, report.Filename, "grades.xlsx")
	require.NotEmpty(t, report.Content)

	book, err := excelize.OpenReader(bytes.NewReader(report.Content))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(gradesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Student", "Status", "Grade", "Feedback", "Pesquisa", "Protótipo", "Apresentação"}, rows[0])
	require.Equal(t, []string{"Bruna", models.SubmissionStatusGraded, "75", "Bom", "3", "2", "4"}, rows[1])
	require.Equal(t, "Bruna", rows[2][0])
	require.Equal(t, models.SubmissionStatusSubmitted, rows[2][1])

	rubricRows, err := book.GetRows(rubricSheet)
	require.NoError(t, err)
	require.Len(t, rubricRows, 4)
	require.Equal(t, []string{"Pesquisa", "40", "Insuficiente", "Regular", "Bom", "Excelente"}, rubricRows[1])
}

func TestExportProjectGradesProjectNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(
		repository.NewProjectRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewRubricRepository(db),
		testLogger(),
	)

	_, err := svc.ExportProjectGrades(context.Background(), 1)
	require.ErrorIs(t, err, ErrProjectNotFound)
}
