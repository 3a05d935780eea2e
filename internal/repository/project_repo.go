package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

// ProjectRepository provides access to projects and their curriculum alignment.
type ProjectRepository interface {
	GetByID(ctx context.Context, id uint) (models.Project, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Project, error)
	PlannedProjectIDs(ctx context.Context, projectIDs []uint) (map[uint]struct{}, error)
	CompetencyProjectIDs(ctx context.Context, projectIDs []uint) (map[uint]struct{}, error)
	ReplaceCompetencies(ctx context.Context, projectID uint, items []models.ProjectCompetency) error
	UpsertPlanning(ctx context.Context, planning *models.ProjectPlanning) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository constructs a project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func (r *projectRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("id ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectRepository) PlannedProjectIDs(ctx context.Context, projectIDs []uint) (map[uint]struct{}, error) {
	return r.projectIDSet(ctx, &models.ProjectPlanning{}, projectIDs)
}

func (r *projectRepository) CompetencyProjectIDs(ctx context.Context, projectIDs []uint) (map[uint]struct{}, error) {
	return r.projectIDSet(ctx, &models.ProjectCompetency{}, projectIDs)
}

func (r *projectRepository) projectIDSet(ctx context.Context, model interface{}, projectIDs []uint) (map[uint]struct{}, error) {
	set := make(map[uint]struct{}, len(projectIDs))
	if len(projectIDs) == 0 {
		return set, nil
	}

	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(model).
		Distinct("project_id").
		Where("project_id IN ?", projectIDs).
		Pluck("project_id", &ids).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *projectRepository) ReplaceCompetencies(ctx context.Context, projectID uint, items []models.ProjectCompetency) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectCompetency{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].ProjectID = projectID
		}
		return tx.Create(&items).Error
	})
}

func (r *projectRepository) UpsertPlanning(ctx context.Context, planning *models.ProjectPlanning) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan", "updated_at"}),
		}).
		Create(planning).Error
}
