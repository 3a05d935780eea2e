package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/models"
	"github.com/noah-isme/pbl-go-api/internal/observability"
	"github.com/noah-isme/pbl-go-api/internal/repository"
)

var (
	// ErrSubmissionNotFound indicates the submission was not located.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionAlreadyGraded indicates a different grade was already recorded.
	ErrSubmissionAlreadyGraded = errors.New("submission already graded")
	// ErrRubricIncomplete indicates not every rubric criterion received a level.
	ErrRubricIncomplete = errors.New("every rubric criterion must be scored")
	// ErrUnknownCriteria indicates a level was selected for a criterion outside the project's rubric.
	ErrUnknownCriteria = errors.New("level selected for unknown rubric criteria")
)

// GradingService grades project submissions.
//
// GradeWithRubric is the strict path: it refuses to save until every criterion is scored.
// Grade accepts any 0-100 integer directly and does not consult the rubric.
type GradingService interface {
	Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor ActivityActor) (dto.SubmissionResponse, error)
	GradeWithRubric(ctx context.Context, submissionID uint, payload dto.RubricGradeRequest, actor ActivityActor) (dto.SubmissionResponse, error)
	PreviewRubricGrade(ctx context.Context, projectID uint, payload dto.GradePreviewRequest) (dto.GradePreviewResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	rubrics     repository.RubricRepository
	projects    repository.ProjectRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(submissions repository.SubmissionRepository, rubrics repository.RubricRepository, projects repository.ProjectRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		rubrics:     rubrics,
		projects:    projects,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		activity:    activity,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/pbl-go-api/internal/service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.direct")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	feedback := s.cleanFeedback(payload.Feedback)
	if submission.IsGraded() {
		if *submission.Grade == *payload.Grade && submission.TeacherFeedback == feedback {
			span.SetAttributes(attribute.Bool("grading.idempotent", true))
			return dto.NewSubmissionResponse(submission), nil
		}
		span.SetStatus(codes.Error, "already_graded")
		return dto.SubmissionResponse{}, ErrSubmissionAlreadyGraded
	}

	grade := *payload.Grade
	if err := s.save(ctx, &submission, grade, feedback, nil, actor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.RubricGrades().WithLabelValues("direct").Inc()
	s.record(ctx, actor, submission, "direct")
	span.SetAttributes(attribute.Int("grading.grade", grade))
	return dto.NewSubmissionResponse(submission), nil
}

func (s *gradingService) GradeWithRubric(ctx context.Context, submissionID uint, payload dto.RubricGradeRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.rubric")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	criteria, err := s.rubrics.ListByProject(ctx, submission.ProjectID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if err := checkLevels(criteria, payload.Levels); err != nil {
		span.SetStatus(codes.Error, "rubric_incomplete")
		return dto.SubmissionResponse{}, err
	}

	grade := CalculateGrade(criteria, payload.Levels)
	feedback := s.cleanFeedback(payload.Feedback)
	evaluations := buildEvaluations(criteria, payload.Levels)

	if submission.IsGraded() {
		if *submission.Grade == grade && submission.TeacherFeedback == feedback && sameEvaluations(submission.Evaluations, evaluations) {
			span.SetAttributes(attribute.Bool("grading.idempotent", true))
			return dto.NewSubmissionResponse(submission), nil
		}
		span.SetStatus(codes.Error, "already_graded")
		return dto.SubmissionResponse{}, ErrSubmissionAlreadyGraded
	}

	if err := s.save(ctx, &submission, grade, feedback, evaluations, actor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.RubricGrades().WithLabelValues("rubric").Inc()
	s.record(ctx, actor, submission, "rubric")
	span.SetAttributes(attribute.Int("grading.grade", grade))
	return dto.NewSubmissionResponse(submission), nil
}

func (s *gradingService) PreviewRubricGrade(ctx context.Context, projectID uint, payload dto.GradePreviewRequest) (dto.GradePreviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradePreviewResponse{}, err
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return dto.GradePreviewResponse{}, mapProjectErr(err)
	}

	criteria, err := s.rubrics.ListByProject(ctx, projectID)
	if err != nil {
		return dto.GradePreviewResponse{}, err
	}

	return dto.GradePreviewResponse{
		Grade:             CalculateGrade(criteria, payload.Levels),
		AllCriteriaScored: AllCriteriaScored(criteria, payload.Levels),
	}, nil
}

func (s *gradingService) loadSubmission(ctx context.Context, submissionID uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *gradingService) save(ctx context.Context, submission *models.Submission, grade int, feedback string, evaluations []models.Evaluation, actor ActivityActor) error {
	gradedAt := s.now()
	gradedBy := actor.ID
	submission.Grade = &grade
	submission.TeacherFeedback = feedback
	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &gradedAt
	submission.GradedBy = &gradedBy

	if err := s.submissions.SaveGrade(ctx, submission, evaluations); err != nil {
		if errors.Is(err, repository.ErrGradeAlreadySet) {
			return ErrSubmissionAlreadyGraded
		}
		return err
	}
	submission.Evaluations = evaluations
	return nil
}

func (s *gradingService) cleanFeedback(feedback string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(feedback))
}

func (s *gradingService) record(ctx context.Context, actor ActivityActor, submission models.Submission, path string) {
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "submission.graded",
		EntityType: "submission",
		EntityID:   strconv.FormatUint(uint64(submission.ID), 10),
		Metadata: map[string]interface{}{
			"project_id": submission.ProjectID,
			"student_id": submission.StudentID,
			"grade":      *submission.Grade,
			"path":       path,
		},
	})
}

func checkLevels(criteria []models.RubricCriteria, levels map[uint]int) error {
	if len(criteria) == 0 || !AllCriteriaScored(criteria, levels) {
		return ErrRubricIncomplete
	}
	known := make(map[uint]struct{}, len(criteria))
	for _, item := range criteria {
		known[item.ID] = struct{}{}
	}
	for id := range levels {
		if _, ok := known[id]; !ok {
			return ErrUnknownCriteria
		}
	}
	return nil
}

func buildEvaluations(criteria []models.RubricCriteria, levels map[uint]int) []models.Evaluation {
	evaluations := make([]models.Evaluation, 0, len(criteria))
	for _, item := range criteria {
		level := levels[item.ID]
		evaluations = append(evaluations, models.Evaluation{
			CriteriaID: item.ID,
			Level:      level,
			Score:      CriterionScore(item.Weight, level),
		})
	}
	return evaluations
}

func sameEvaluations(stored, proposed []models.Evaluation) bool {
	if len(stored) != len(proposed) {
		return false
	}
	levels := make(map[uint]int, len(stored))
	for _, evaluation := range stored {
		levels[evaluation.CriteriaID] = evaluation.Level
	}
	for _, evaluation := range proposed {
		if level, ok := levels[evaluation.CriteriaID]; !ok || level != evaluation.Level {
			return false
		}
	}
	return true
}
