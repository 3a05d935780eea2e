package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/repository"
)

const (
	deadlineWindow = 7 * 24 * time.Hour
	eventWindow    = 3 * 24 * time.Hour
)

// PendingActionsService summarizes what a teacher still has to do.
type PendingActionsService interface {
	GetPendingActions(ctx context.Context, teacherID uint) (dto.PendingActionsResponse, error)
}

type pendingActionsService struct {
	projects repository.ProjectRepository
	events   repository.EventRepository
	location *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPendingActionsService constructs the aggregator. Date-only deadlines resolve in loc.
func NewPendingActionsService(projects repository.ProjectRepository, events repository.EventRepository, loc *time.Location, logger zerolog.Logger) PendingActionsService {
	if loc == nil {
		loc = time.UTC
	}
	return &pendingActionsService{
		projects: projects,
		events:   events,
		location: loc,
		logger:   logger.With().Str("component", "pending_actions_service").Logger(),
		now:      time.Now,
	}
}

func (s *pendingActionsService) GetPendingActions(ctx context.Context, teacherID uint) (dto.PendingActionsResponse, error) {
	result := dto.EmptyPendingActions()

	projects, err := s.projects.ListByTeacher(ctx, teacherID)
	if err != nil {
		return dto.PendingActionsResponse{}, err
	}
	if len(projects) == 0 {
		return result, nil
	}

	ids := make([]uint, 0, len(projects))
	for _, project := range projects {
		ids = append(ids, project.ID)
	}

	planned, err := s.projects.PlannedProjectIDs(ctx, ids)
	if err != nil {
		return dto.PendingActionsResponse{}, err
	}
	aligned, err := s.projects.CompetencyProjectIDs(ctx, ids)
	if err != nil {
		return dto.PendingActionsResponse{}, err
	}

	now := s.now().In(s.location)
	deadlineLimit := now.Add(deadlineWindow)
	for _, project := range projects {
		if _, ok := planned[project.ID]; !ok {
			result.ProjectsWithoutPlanning++
		}
		if _, ok := aligned[project.ID]; !ok {
			result.ProjectsWithoutCompetencies++
		}

		deadline, ok := project.Deadline(s.location)
		if !ok {
			if project.NextDeadline != nil {
				s.logger.Debug().Uint("project_id", project.ID).Str("deadline", *project.NextDeadline).Msg("skipping unparseable deadline")
			}
			continue
		}
		if withinWindow(deadline, now, deadlineLimit) {
			result.UpcomingDeadlines = append(result.UpcomingDeadlines, dto.UpcomingDeadline{
				ProjectID: project.ID,
				Title:     project.Title,
				Deadline:  deadline,
			})
		}
	}

	events, err := s.events.ListByTeacher(ctx, teacherID)
	if err != nil {
		return dto.PendingActionsResponse{}, err
	}
	eventLimit := now.Add(eventWindow)
	for _, event := range events {
		if !withinWindow(event.Date, now, eventLimit) {
			continue
		}
		result.UpcomingEvents = append(result.UpcomingEvents, dto.UpcomingEvent{
			ID:        event.ID,
			Title:     event.Title,
			Date:      event.Date,
			ProjectID: event.ProjectID,
		})
	}

	return result, nil
}

// withinWindow reports start <= t <= end.
func withinWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
