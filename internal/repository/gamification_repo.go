package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

// GamificationRepository persists students' XP and achievement progress.
type GamificationRepository interface {
	GetStudent(ctx context.Context, id uint) (models.Student, error)
	UpdateStudentXP(ctx context.Context, student *models.Student) error
	GetAchievement(ctx context.Context, id string) (models.Achievement, error)
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
	EnsureAchievements(ctx context.Context, items []models.Achievement) (int64, error)
	FindStudentAchievement(ctx context.Context, studentID uint, achievementID string) (models.StudentAchievement, error)
	UpsertStudentAchievement(ctx context.Context, row *models.StudentAchievement) error
	ListStudentAchievements(ctx context.Context, studentID uint) ([]models.StudentAchievement, error)
	WithinTransaction(ctx context.Context, fn func(repo GamificationRepository) error) error
}

type gamificationRepository struct {
	db *gorm.DB
	// set for repositories bound to a transaction; rows read there are locked for update.
	locking bool
}

// NewGamificationRepository constructs a GORM-backed gamification repository.
func NewGamificationRepository(db *gorm.DB) GamificationRepository {
	return &gamificationRepository{db: db}
}

func (r *gamificationRepository) query(ctx context.Context) *gorm.DB {
	query := r.db.WithContext(ctx)
	if r.locking {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

func (r *gamificationRepository) GetStudent(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.query(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *gamificationRepository) UpdateStudentXP(ctx context.Context, student *models.Student) error {
	result := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", student.ID).
		Updates(map[string]interface{}{"xp": student.XP, "level": student.Level})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gamificationRepository) GetAchievement(ctx context.Context, id string) (models.Achievement, error) {
	var achievement models.Achievement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&achievement).Error; err != nil {
		return models.Achievement{}, err
	}

	return achievement, nil
}

func (r *gamificationRepository) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := r.db.WithContext(ctx).Order("xp ASC, id ASC").Find(&achievements).Error; err != nil {
		return nil, err
	}

	return achievements, nil
}

func (r *gamificationRepository) EnsureAchievements(ctx context.Context, items []models.Achievement) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&items)
	return result.RowsAffected, result.Error
}

func (r *gamificationRepository) FindStudentAchievement(ctx context.Context, studentID uint, achievementID string) (models.StudentAchievement, error) {
	var row models.StudentAchievement
	if err := r.query(ctx).
		Where("student_id = ?", studentID).
		Where("achievement_id = ?", achievementID).
		First(&row).Error; err != nil {
		return models.StudentAchievement{}, err
	}

	return row, nil
}

func (r *gamificationRepository) UpsertStudentAchievement(ctx context.Context, row *models.StudentAchievement) error {
	if row.ID != 0 {
		return r.db.WithContext(ctx).
			Model(row).
			Select("progress", "total", "unlocked", "unlocked_at", "updated_at").
			Updates(row).Error
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "achievement_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"progress", "total", "unlocked", "unlocked_at", "updated_at"}),
		}).
		Omit("Achievement").
		Create(row).Error
}

func (r *gamificationRepository) ListStudentAchievements(ctx context.Context, studentID uint) ([]models.StudentAchievement, error) {
	var rows []models.StudentAchievement
	if err := r.db.WithContext(ctx).
		Preload("Achievement").
		Where("student_id = ?", studentID).
		Order("unlocked DESC, updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *gamificationRepository) WithinTransaction(ctx context.Context, fn func(repo GamificationRepository) error) error {
	if r.locking {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gamificationRepository{db: tx, locking: true})
	})
}
