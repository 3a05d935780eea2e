package models

import (
	"strings"
	"time"
)

// Project is a PBL project owned by a teacher.
type Project struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TeacherID    uint      `gorm:"not null;index" json:"teacher_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	NextDeadline *string   `gorm:"size:64" json:"next_deadline"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Deadline parses NextDeadline. Date-only values resolve to midnight in loc.
func (p Project) Deadline(loc *time.Location) (time.Time, bool) {
	if p.NextDeadline == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(*p.NextDeadline)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range deadlineLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// ProjectPlanning stores the curriculum plan of a project. At most one per project.
type ProjectPlanning struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;uniqueIndex" json:"project_id"`
	Plan      string    `gorm:"type:text" json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectCompetency links a project to a BNCC competency with a coverage percentage.
type ProjectCompetency struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProjectID      uint      `gorm:"not null;index" json:"project_id"`
	CompetencyCode string    `gorm:"size:32;not null" json:"competency_code"`
	Coverage       int       `gorm:"not null;default:0" json:"coverage"`
	CreatedAt      time.Time `json:"created_at"`
}

// Event is a calendar entry owned by a teacher, optionally tied to a project.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeacherID uint      `gorm:"not null;index" json:"teacher_id"`
	ProjectID *uint     `json:"project_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Date      time.Time `gorm:"not null;index" json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
