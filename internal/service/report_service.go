package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/pbl-go-api/internal/models"
	"github.com/noah-isme/pbl-go-api/internal/repository"
)

const (
	gradesSheet = "Grades"
	rubricSheet = "Rubric"
)

// GradeReport is an exported workbook ready to be streamed to a client.
type GradeReport struct {
	Filename string
	Content  []byte
}

// ReportService exports a project's grades as a spreadsheet.
type ReportService interface {
	ExportProjectGrades(ctx context.Context, projectID uint) (GradeReport, error)
}

type reportService struct {
	projects    repository.ProjectRepository
	submissions repository.SubmissionRepository
	rubrics     repository.RubricRepository
	logger      zerolog.Logger
}

// NewReportService constructs the grade report exporter.
func NewReportService(projects repository.ProjectRepository, submissions repository.SubmissionRepository, rubrics repository.RubricRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		projects:    projects,
		submissions: submissions,
		rubrics:     rubrics,
		logger:      logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *reportService) ExportProjectGrades(ctx context.Context, projectID uint) (GradeReport, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return GradeReport{}, mapProjectErr(err)
	}
	criteria, err := s.rubrics.ListByProject(ctx, projectID)
	if err != nil {
		return GradeReport{}, err
	}
	submissions, err := s.submissions.ListByProject(ctx, projectID)
	if err != nil {
		return GradeReport{}, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", gradesSheet); err != nil {
		return GradeReport{}, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(rubricSheet); err != nil {
		return GradeReport{}, fmt.Errorf("new sheet: %w", err)
	}

	header := []interface{}{"Student", "Status", "Grade", "Feedback"}
	for _, item := range criteria {
		header = append(header, item.Criterion)
	}
	rows := [][]interface{}{header}
	for _, submission := range submissions {
		rows = append(rows, gradeRow(submission, criteria))
	}
	if err := writeRows(f, gradesSheet, rows); err != nil {
		return GradeReport{}, err
	}

	rubricRows := [][]interface{}{{"Criterion", "Weight", "Level 1", "Level 2", "Level 3", "Level 4"}}
	for _, item := range criteria {
		rubricRows = append(rubricRows, []interface{}{item.Criterion, item.Weight, item.Level1, item.Level2, item.Level3, item.Level4})
	}
	if err := writeRows(f, rubricSheet, rubricRows); err != nil {
		return GradeReport{}, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		styleHeader(f, gradesSheet, len(header), bold)
		styleHeader(f, rubricSheet, len(rubricRows[0]), bold)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return GradeReport{}, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info().Uint("project_id", projectID).Int("submissions", len(submissions)).Msg("grade report exported")
	return GradeReport{
		Filename: fmt.Sprintf("project-%d-grades.xlsx", project.ID),
		Content:  buffer.Bytes(),
	}, nil
}

func gradeRow(submission models.Submission, criteria []models.RubricCriteria) []interface{} {
	grade := ""
	if submission.Grade != nil {
		grade = strconv.Itoa(*submission.Grade)
	}
	row := []interface{}{submission.Student.Name, submission.Status, grade, submission.TeacherFeedback}

	levels := make(map[uint]int, len(submission.Evaluations))
	for _, evaluation := range submission.Evaluations {
		levels[evaluation.CriteriaID] = evaluation.Level
	}
	for _, item := range criteria {
		if level, ok := levels[item.ID]; ok {
			row = append(row, level)
			continue
		}
		row = append(row, "")
	}
	return row
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, columns int, style int) {
	end, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return
	}
	_ = f.SetCellStyle(sheet, "A1", end, style)
	_ = f.AutoFilter(sheet, "A1:"+end, nil)
}
