package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

// ErrGradeAlreadySet is returned by SaveGrade when the submission already carries a grade.
var ErrGradeAlreadySet = errors.New("submission grade already set")

// SubmissionRepository defines data operations for project submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListByProject(ctx context.Context, projectID uint) ([]models.Submission, error)
	SaveGrade(ctx context.Context, submission *models.Submission, evaluations []models.Evaluation) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Project").
		Preload("Student").
		Preload("Evaluations")
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByProject(ctx context.Context, projectID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// SaveGrade stores the grade fields and replaces the submission's evaluations atomically.
// Only an ungraded row is updated; a grade written concurrently yields ErrGradeAlreadySet.
func (r *submissionRepository) SaveGrade(ctx context.Context, submission *models.Submission, evaluations []models.Evaluation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Submission{}).
			Where("id = ? AND grade IS NULL", submission.ID).
			Updates(map[string]interface{}{
				"grade":            submission.Grade,
				"teacher_feedback": submission.TeacherFeedback,
				"status":           submission.Status,
				"graded_by":        submission.GradedBy,
				"graded_at":        submission.GradedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrGradeAlreadySet
		}

		if err := tx.Where("submission_id = ?", submission.ID).Delete(&models.Evaluation{}).Error; err != nil {
			return err
		}
		if len(evaluations) == 0 {
			return nil
		}
		for i := range evaluations {
			evaluations[i].SubmissionID = submission.ID
		}
		return tx.Create(&evaluations).Error
	})
}
