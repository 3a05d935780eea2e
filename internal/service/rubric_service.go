package service

import (
	"context"
	"errors"
	"fmt"
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

var (
	// ErrProjectNotFound indicates the project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrCriteriaNotFound indicates the rubric criterion does not exist in the project.
	ErrCriteriaNotFound = errors.New("rubric criteria not found")
	// ErrEmptyContent indicates a text field held nothing but markup.
	ErrEmptyContent = errors.New("content empty after sanitization")
)

// WeightExceededError is returned when a change would push the rubric above 100%.
type WeightExceededError struct {
	Total int
}

func (e *WeightExceededError) Error() string {
	return fmt.Sprintf("rubric weights would total %d%%, above the %d%% limit", e.Total, models.MaxRubricWeight)
}

// RubricService manages a project's weighted grading criteria.
type RubricService interface {
	GetRubric(ctx context.Context, projectID uint) (dto.RubricResponse, error)
	CheckWeight(ctx context.Context, projectID uint, payload dto.WeightCheckRequest) (dto.WeightCheckResponse, error)
	CreateCriteria(ctx context.Context, projectID uint, payload dto.RubricCriteriaRequest, actor ActivityActor) (dto.RubricCriteriaResponse, error)
	UpdateCriteria(ctx context.Context, projectID, criteriaID uint, payload dto.RubricCriteriaUpdateRequest, actor ActivityActor) (dto.RubricCriteriaResponse, error)
	DeleteCriteria(ctx context.Context, projectID, criteriaID uint, actor ActivityActor) error
}

type rubricService struct {
	repo      repository.RubricRepository
	projects  repository.ProjectRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewRubricService constructs the rubric service.
func NewRubricService(repo repository.RubricRepository, projects repository.ProjectRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) RubricService {
	return &rubricService{
		repo:      repo,
		projects:  projects,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		activity:  activity,
		logger:    logger.With().Str("component", "rubric_service").Logger(),
	}
}

func (s *rubricService) GetRubric(ctx context.Context, projectID uint) (dto.RubricResponse, error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return dto.RubricResponse{}, err
	}

	criteria, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return dto.RubricResponse{}, err
	}
	return dto.NewRubricResponse(projectID, criteria), nil
}

func (s *rubricService) CheckWeight(ctx context.Context, projectID uint, payload dto.WeightCheckRequest) (dto.WeightCheckResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.WeightCheckResponse{}, err
	}
	if err := s.ensureProject(ctx, projectID); err != nil {
		return dto.WeightCheckResponse{}, err
	}

	criteria, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return dto.WeightCheckResponse{}, err
	}
	for i := range criteria {
		if weight, ok := payload.Overrides[criteria[i].ID]; ok {
			criteria[i].Weight = weight
		}
	}

	check := ValidateWeightChange(criteria, payload.CriteriaID, payload.ProposedWeight)
	return dto.WeightCheckResponse{OK: check.OK, Total: check.Total}, nil
}

func (s *rubricService) CreateCriteria(ctx context.Context, projectID uint, payload dto.RubricCriteriaRequest, actor ActivityActor) (dto.RubricCriteriaResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RubricCriteriaResponse{}, err
	}
	if err := s.ensureProject(ctx, projectID); err != nil {
		return dto.RubricCriteriaResponse{}, err
	}

	model := models.RubricCriteria{
		ProjectID: projectID,
		Criterion: s.clean(payload.Criterion),
		Weight:    payload.Weight,
		Level1:    s.clean(payload.Level1),
		Level2:    s.clean(payload.Level2),
		Level3:    s.clean(payload.Level3),
		Level4:    s.clean(payload.Level4),
	}
	if model.Criterion == "" {
		return dto.RubricCriteriaResponse{}, ErrEmptyContent
	}

	var total int
	err := s.repo.WithinTransaction(ctx, func(repo repository.RubricRepository) error {
		criteria, err := repo.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		check := ValidateWeightChange(criteria, 0, model.Weight)
		if !check.OK {
			return &WeightExceededError{Total: check.Total}
		}
		total = check.Total
		return repo.Create(ctx, &model)
	})
	if err != nil {
		return dto.RubricCriteriaResponse{}, err
	}

	s.record(ctx, actor, "rubric.criteria_created", model, total)
	return dto.NewRubricCriteriaResponse(model), nil
}

func (s *rubricService) UpdateCriteria(ctx context.Context, projectID, criteriaID uint, payload dto.RubricCriteriaUpdateRequest, actor ActivityActor) (dto.RubricCriteriaResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RubricCriteriaResponse{}, err
	}

	var (
		model models.RubricCriteria
		total int
	)
	err := s.repo.WithinTransaction(ctx, func(repo repository.RubricRepository) error {
		criteria, err := repo.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}

		found := false
		for _, item := range criteria {
			if item.ID == criteriaID {
				model = item
				found = true
				break
			}
		}
		if !found {
			return ErrCriteriaNotFound
		}

		if payload.Criterion != nil {
			criterion := s.clean(*payload.Criterion)
			if criterion == "" {
				return ErrEmptyContent
			}
			model.Criterion = criterion
		}
		if payload.Weight != nil {
			check := ValidateWeightChange(criteria, criteriaID, *payload.Weight)
			if !check.OK {
				return &WeightExceededError{Total: check.Total}
			}
			model.Weight = *payload.Weight
		}
		applyLevel(&model.Level1, payload.Level1, s.clean)
		applyLevel(&model.Level2, payload.Level2, s.clean)
		applyLevel(&model.Level3, payload.Level3, s.clean)
		applyLevel(&model.Level4, payload.Level4, s.clean)

		for _, item := range criteria {
			if item.ID == criteriaID {
				total += model.Weight
				continue
			}
			total += item.Weight
		}
		return repo.Update(ctx, &model)
	})
	if err != nil {
		return dto.RubricCriteriaResponse{}, err
	}

	s.record(ctx, actor, "rubric.criteria_updated", model, total)
	return dto.NewRubricCriteriaResponse(model), nil
}

func (s *rubricService) DeleteCriteria(ctx context.Context, projectID, criteriaID uint, actor ActivityActor) error {
	model, err := s.repo.GetByID(ctx, projectID, criteriaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCriteriaNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, projectID, criteriaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCriteriaNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "rubric.criteria_deleted",
		EntityType: "rubric_criteria",
		EntityID:   strconv.FormatUint(uint64(criteriaID), 10),
		Metadata: map[string]interface{}{
			"project_id": projectID,
			"criterion":  model.Criterion,
			"weight":     model.Weight,
		},
	})
	return nil
}

func (s *rubricService) ensureProject(ctx context.Context, projectID uint) error {
	if s.projects == nil {
		return nil
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return mapProjectErr(err)
	}
	return nil
}

func (s *rubricService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func (s *rubricService) record(ctx context.Context, actor ActivityActor, action string, model models.RubricCriteria, total int) {
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "rubric_criteria",
		EntityID:   strconv.FormatUint(uint64(model.ID), 10),
		Metadata: map[string]interface{}{
			"project_id":   model.ProjectID,
			"weight":       model.Weight,
			"total_weight": total,
		},
	})
}

func applyLevel(target *string, value *string, clean func(string) string) {
	if value == nil {
		return
	}
	*target = clean(*value)
}
