package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/models"
	"github.com/noah-isme/pbl-go-api/internal/repository"
)

// ProjectService maintains a project's curriculum alignment.
type ProjectService interface {
	ReplaceCompetencies(ctx context.Context, projectID uint, payload dto.ReplaceCompetenciesRequest, actor ActivityActor) ([]dto.CompetencyResponse, error)
	SavePlanning(ctx context.Context, projectID uint, payload dto.PlanningRequest, actor ActivityActor) (dto.PlanningResponse, error)
}

type projectService struct {
	repo      repository.ProjectRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewProjectService constructs the project alignment service.
func NewProjectService(repo repository.ProjectRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ProjectService {
	return &projectService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		activity:  activity,
		logger:    logger.With().Str("component", "project_service").Logger(),
	}
}

func (s *projectService) ReplaceCompetencies(ctx context.Context, projectID uint, payload dto.ReplaceCompetenciesRequest, actor ActivityActor) ([]dto.CompetencyResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(payload.Competencies))
	items := make([]models.ProjectCompetency, 0, len(payload.Competencies))
	for _, item := range payload.Competencies {
		code := strings.ToUpper(strings.TrimSpace(item.CompetencyCode))
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		items = append(items, models.ProjectCompetency{
			ProjectID:      projectID,
			CompetencyCode: code,
			Coverage:       item.Coverage,
		})
	}

	if err := s.repo.ReplaceCompetencies(ctx, projectID, items); err != nil {
		return nil, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "project.competencies_replaced",
		EntityType: "project",
		EntityID:   strconv.FormatUint(uint64(projectID), 10),
		Metadata:   map[string]interface{}{"count": len(items)},
	})
	return dto.NewCompetencyResponseSlice(items), nil
}

func (s *projectService) SavePlanning(ctx context.Context, projectID uint, payload dto.PlanningRequest, actor ActivityActor) (dto.PlanningResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PlanningResponse{}, err
	}
	if err := s.ensureProject(ctx, projectID); err != nil {
		return dto.PlanningResponse{}, err
	}

	plan := strings.TrimSpace(s.sanitizer.Sanitize(payload.Plan))
	if plan == "" {
		return dto.PlanningResponse{}, ErrEmptyContent
	}

	planning := models.ProjectPlanning{ProjectID: projectID, Plan: plan}
	if err := s.repo.UpsertPlanning(ctx, &planning); err != nil {
		return dto.PlanningResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "project.planning_saved",
		EntityType: "project",
		EntityID:   strconv.FormatUint(uint64(projectID), 10),
	})
	return dto.PlanningResponse{ProjectID: projectID, Plan: plan}, nil
}

func (s *projectService) ensureProject(ctx context.Context, projectID uint) error {
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return mapProjectErr(err)
	}
	return nil
}

func mapProjectErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProjectNotFound
	}
	return err
}
