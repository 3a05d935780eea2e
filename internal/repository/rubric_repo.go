package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

// RubricRepository defines persistence operations for rubric criteria.
type RubricRepository interface {
	ListByProject(ctx context.Context, projectID uint) ([]models.RubricCriteria, error)
	GetByID(ctx context.Context, projectID, id uint) (models.RubricCriteria, error)
	Create(ctx context.Context, criteria *models.RubricCriteria) error
	Update(ctx context.Context, criteria *models.RubricCriteria) error
	Delete(ctx context.Context, projectID, id uint) error
	WithinTransaction(ctx context.Context, fn func(repo RubricRepository) error) error
}

type rubricRepository struct {
	db      *gorm.DB
	locking bool
}

// NewRubricRepository instantiates a GORM-backed rubric repository.
func NewRubricRepository(db *gorm.DB) RubricRepository {
	return &rubricRepository{db: db}
}

func (r *rubricRepository) ListByProject(ctx context.Context, projectID uint) ([]models.RubricCriteria, error) {
	query := r.db.WithContext(ctx)
	if r.locking {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var criteria []models.RubricCriteria
	if err := query.Where("project_id = ?", projectID).Order("id ASC").Find(&criteria).Error; err != nil {
		return nil, err
	}

	return criteria, nil
}

func (r *rubricRepository) GetByID(ctx context.Context, projectID, id uint) (models.RubricCriteria, error) {
	var criteria models.RubricCriteria
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&criteria, id).Error; err != nil {
		return models.RubricCriteria{}, err
	}

	return criteria, nil
}

func (r *rubricRepository) Create(ctx context.Context, criteria *models.RubricCriteria) error {
	return r.db.WithContext(ctx).Create(criteria).Error
}

func (r *rubricRepository) Update(ctx context.Context, criteria *models.RubricCriteria) error {
	return r.db.WithContext(ctx).Save(criteria).Error
}

func (r *rubricRepository) Delete(ctx context.Context, projectID, id uint) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.RubricCriteria{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rubricRepository) WithinTransaction(ctx context.Context, fn func(repo RubricRepository) error) error {
	if r.locking {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&rubricRepository{db: tx, locking: true})
	})
}
