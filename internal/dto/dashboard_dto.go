package dto

import "time"

// PendingActionsResponse groups the follow-ups a teacher still has to act on.
type PendingActionsResponse struct {
	ProjectsWithoutPlanning     int                `json:"projects_without_planning"`
	ProjectsWithoutCompetencies int                `json:"projects_without_competencies"`
	UpcomingDeadlines           []UpcomingDeadline `json:"upcoming_deadlines"`
	UpcomingEvents              []UpcomingEvent    `json:"upcoming_events"`
}

// UpcomingDeadline is a project deadline inside the deadline window.
type UpcomingDeadline struct {
	ProjectID uint      `json:"project_id"`
	Title     string    `json:"title"`
	Deadline  time.Time `json:"deadline"`
}

// UpcomingEvent is a teacher event inside the event window.
type UpcomingEvent struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	ProjectID *uint     `json:"project_id"`
}

// EmptyPendingActions returns a zero result with non-nil slices.
func EmptyPendingActions() PendingActionsResponse {
	return PendingActionsResponse{
		UpcomingDeadlines: []UpcomingDeadline{},
		UpcomingEvents:    []UpcomingEvent{},
	}
}
