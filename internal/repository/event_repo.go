package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

// EventRepository provides read access to teacher calendar events.
type EventRepository interface {
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("date ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
