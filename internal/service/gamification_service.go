package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
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

// ErrStudentNotFound indicates the student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// TrackOutcome tells callers what a progress event actually did.
type TrackOutcome string

const (
	// OutcomeProgressed means progress was recorded but the threshold was not reached.
	OutcomeProgressed TrackOutcome = "progressed"
	// OutcomeUnlocked means the achievement unlocked and its XP was awarded.
	OutcomeUnlocked TrackOutcome = "unlocked"
	// OutcomeAlreadyUnlocked means the pair was unlocked before; nothing changed.
	OutcomeAlreadyUnlocked TrackOutcome = "already_unlocked"
	// OutcomeAchievementNotFound means the achievement id is unknown; nothing changed.
	OutcomeAchievementNotFound TrackOutcome = "achievement_not_found"
	// OutcomeStudentMissing means the achievement unlocked but the student row was gone, so no XP was applied.
	OutcomeStudentMissing TrackOutcome = "student_missing"
)

// GamificationService tracks achievement progress, awards XP and derives levels.
type GamificationService interface {
	TrackProgress(ctx context.Context, payload dto.TrackProgressRequest, actor ActivityActor) (dto.TrackProgressResponse, error)
	CheckLevelAchievements(ctx context.Context, studentID uint, level, xp int) ([]dto.UnlockedAchievementResponse, error)
	AdjustXP(ctx context.Context, studentID uint, payload dto.AdjustXPRequest, actor ActivityActor) (dto.XPAdjustmentResponse, error)
	ListAchievements(ctx context.Context) ([]dto.AchievementResponse, error)
	GetProfile(ctx context.Context, studentID uint) (dto.StudentProfileResponse, error)
	SeedCatalog(ctx context.Context) (int64, error)
}

type gamificationService struct {
	repo      repository.GamificationRepository
	rules     ThresholdRules
	validator *validator.Validate
	cache     *redis.Client
	cacheTTL  time.Duration
	publisher AchievementEventPublisher
	activity  ActivityRecorder
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewGamificationService constructs the gamification engine. A nil rules table falls back to DefaultThresholdRules.
func NewGamificationService(
	repo repository.GamificationRepository,
	rules ThresholdRules,
	validate *validator.Validate,
	cache *redis.Client,
	cacheTTL time.Duration,
	publisher AchievementEventPublisher,
	activity ActivityRecorder,
	logger zerolog.Logger,
) GamificationService {
	if rules == nil {
		rules = DefaultThresholdRules()
	}
	return &gamificationService{
		repo:      repo,
		rules:     rules,
		validator: validate,
		cache:     cache,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		activity:  activity,
		logger:    logger.With().Str("component", "gamification_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/pbl-go-api/internal/service/gamification"),
		now:       time.Now,
	}
}

// progressRequest is one unit of work on the cascade worklist.
type progressRequest struct {
	studentID     uint
	achievementID string
	increment     int
	total         *int
	cascaded      bool
}

// progressStep is the committed effect of a single progressRequest.
type progressStep struct {
	request     progressRequest
	outcome     TrackOutcome
	record      models.StudentAchievement
	achievement models.Achievement
	xpAwarded   int
	student     *models.Student
}

func (p progressStep) unlocked() bool {
	return p.outcome == OutcomeUnlocked || p.outcome == OutcomeStudentMissing
}

type cascadeResult struct {
	steps   []progressStep
	student *models.Student
}

// changedRows reports whether any step wrote a student achievement row.
func (c cascadeResult) changedRows() bool {
	for _, step := range c.steps {
		if step.outcome == OutcomeProgressed || step.unlocked() {
			return true
		}
	}
	return false
}

func (c cascadeResult) unlockedSteps() []progressStep {
	var unlocked []progressStep
	for _, step := range c.steps {
		if step.unlocked() {
			unlocked = append(unlocked, step)
		}
	}
	return unlocked
}

func (s *gamificationService) TrackProgress(ctx context.Context, payload dto.TrackProgressRequest, actor ActivityActor) (dto.TrackProgressResponse, error) {
	ctx, span := s.tracer.Start(ctx, "gamification.track_progress")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.TrackProgressResponse{}, err
	}

	increment := payload.Increment
	if increment == 0 {
		increment = 1
	}
	span.SetAttributes(
		attribute.Int64("gamification.student_id", int64(payload.StudentID)),
		attribute.String("gamification.achievement_id", payload.AchievementID),
		attribute.Int("gamification.increment", increment),
	)

	initial := progressRequest{
		studentID:     payload.StudentID,
		achievementID: payload.AchievementID,
		increment:     increment,
		total:         payload.Total,
	}

	var result cascadeResult
	err := s.repo.WithinTransaction(ctx, func(repo repository.GamificationRepository) error {
		var err error
		result, err = s.runCascade(ctx, repo, []progressRequest{initial})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "track_progress_failed")
		return dto.TrackProgressResponse{}, err
	}

	s.afterCommit(ctx, payload.StudentID, result, actor)

	first := result.steps[0]
	span.SetAttributes(
		attribute.String("gamification.outcome", string(first.outcome)),
		attribute.Int("gamification.cascade_steps", len(result.steps)-1),
	)

	response := dto.TrackProgressResponse{
		Unlocked:  first.unlocked(),
		XPAwarded: first.xpAwarded,
		Outcome:   string(first.outcome),
		Progress:  first.record.Progress,
		Total:     first.record.Total,
		Cascade:   unlockedResponses(result.steps[1:]),
	}
	if result.student != nil {
		xp, level := result.student.XP, result.student.Level
		response.StudentXP = &xp
		response.StudentLevel = &level
	}
	return response, nil
}

func (s *gamificationService) CheckLevelAchievements(ctx context.Context, studentID uint, level, xp int) ([]dto.UnlockedAchievementResponse, error) {
	ctx, span := s.tracer.Start(ctx, "gamification.check_level_achievements")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("gamification.student_id", int64(studentID)),
		attribute.Int("gamification.level", level),
		attribute.Int("gamification.xp", xp),
	)

	var result cascadeResult
	err := s.repo.WithinTransaction(ctx, func(repo repository.GamificationRepository) error {
		var err error
		result, err = s.runCascade(ctx, repo, s.thresholdRequests(studentID, level, xp))
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "threshold_check_failed")
		return nil, err
	}

	s.afterCommit(ctx, studentID, result, SystemActor)
	return unlockedResponses(result.steps), nil
}

func (s *gamificationService) AdjustXP(ctx context.Context, studentID uint, payload dto.AdjustXPRequest, actor ActivityActor) (dto.XPAdjustmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "gamification.adjust_xp")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("gamification.student_id", int64(studentID)),
		attribute.Int("gamification.delta", payload.Delta),
	)

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.XPAdjustmentResponse{}, err
	}

	var (
		adjusted models.Student
		previous int
		result   cascadeResult
	)
	err := s.repo.WithinTransaction(ctx, func(repo repository.GamificationRepository) error {
		student, err := repo.GetStudent(ctx, studentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("load student %d: %w", studentID, err)
		}

		previous = student.XP
		student.ApplyXP(payload.Delta)
		if err := repo.UpdateStudentXP(ctx, &student); err != nil {
			return fmt.Errorf("update student %d xp: %w", studentID, err)
		}
		adjusted = student

		result, err = s.runCascade(ctx, repo, s.thresholdRequests(studentID, student.Level, student.XP))
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "adjust_xp_failed")
		return dto.XPAdjustmentResponse{}, err
	}

	if result.student == nil {
		result.student = &adjusted
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "student.xp_adjusted",
		EntityType: "student",
		EntityID:   strconv.FormatUint(uint64(studentID), 10),
		Metadata: map[string]interface{}{
			"delta":       payload.Delta,
			"reason":      payload.Reason,
			"previous_xp": previous,
			"xp":          adjusted.XP,
			"level":       adjusted.Level,
		},
	})
	s.afterCommit(ctx, studentID, result, actor)
	s.invalidateProfile(ctx, studentID)

	return dto.XPAdjustmentResponse{
		StudentID: studentID,
		XP:        result.student.XP,
		Level:     result.student.Level,
		Cascade:   unlockedResponses(result.steps),
	}, nil
}

// runCascade drains the worklist inside the caller's transaction. Every unlock that
// changes the student's XP re-evaluates the threshold rules and appends their
// requests to the queue; already unlocked pairs are no-ops, so the queue always drains.
func (s *gamificationService) runCascade(ctx context.Context, repo repository.GamificationRepository, queue []progressRequest) (cascadeResult, error) {
	var result cascadeResult
	for len(queue) > 0 {
		request := queue[0]
		queue = queue[1:]

		step, err := s.applyProgress(ctx, repo, request)
		if err != nil {
			return cascadeResult{}, err
		}
		result.steps = append(result.steps, step)

		if step.student == nil {
			continue
		}
		result.student = step.student
		queue = append(queue, s.thresholdRequests(request.studentID, step.student.Level, step.student.XP)...)
	}
	return result, nil
}

func (s *gamificationService) thresholdRequests(studentID uint, level, xp int) []progressRequest {
	keys := s.rules.Evaluate(level, xp)
	requests := make([]progressRequest, 0, len(keys))
	for _, key := range keys {
		total := 1
		requests = append(requests, progressRequest{
			studentID:     studentID,
			achievementID: key,
			increment:     1,
			total:         &total,
			cascaded:      true,
		})
	}
	return requests
}

func (s *gamificationService) applyProgress(ctx context.Context, repo repository.GamificationRepository, request progressRequest) (progressStep, error) {
	step := progressStep{request: request}

	achievement, err := repo.GetAchievement(ctx, request.achievementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			step.outcome = OutcomeAchievementNotFound
			return step, nil
		}
		return step, fmt.Errorf("load achievement %s: %w", request.achievementID, err)
	}
	step.achievement = achievement

	record, err := repo.FindStudentAchievement(ctx, request.studentID, request.achievementID)
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return step, fmt.Errorf("load progress for student %d: %w", request.studentID, err)
	}
	if exists && record.Unlocked {
		step.outcome = OutcomeAlreadyUnlocked
		step.record = record
		return step, nil
	}
	if !exists {
		record = models.StudentAchievement{
			StudentID:     request.studentID,
			AchievementID: request.achievementID,
		}
	}

	total := 1
	switch {
	case request.total != nil:
		total = *request.total
	case exists && record.Total > 0:
		total = record.Total
	}

	record.Progress += request.increment
	record.Total = total
	record.Unlocked = record.Progress >= total
	if record.Unlocked {
		unlockedAt := s.now()
		record.UnlockedAt = &unlockedAt
	}

	if err := repo.UpsertStudentAchievement(ctx, &record); err != nil {
		return step, fmt.Errorf("save progress for student %d: %w", request.studentID, err)
	}
	step.record = record

	if !record.Unlocked {
		step.outcome = OutcomeProgressed
		return step, nil
	}

	student, err := repo.GetStudent(ctx, request.studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().
				Uint("student_id", request.studentID).
				Str("achievement_id", request.achievementID).
				Msg("achievement unlocked for missing student; xp not applied")
			step.outcome = OutcomeStudentMissing
			return step, nil
		}
		return step, fmt.Errorf("load student %d: %w", request.studentID, err)
	}

	student.ApplyXP(achievement.XP)
	if err := repo.UpdateStudentXP(ctx, &student); err != nil {
		return step, fmt.Errorf("update student %d xp: %w", request.studentID, err)
	}

	step.outcome = OutcomeUnlocked
	step.xpAwarded = achievement.XP
	step.student = &student
	return step, nil
}

// afterCommit emits metrics, events and audit entries for committed unlocks and
// drops the cached profile whenever a progress row changed.
func (s *gamificationService) afterCommit(ctx context.Context, studentID uint, result cascadeResult, actor ActivityActor) {
	if !result.changedRows() {
		return
	}

	for _, step := range result.unlockedSteps() {
		observability.AchievementsUnlocked().WithLabelValues(step.achievement.ID).Inc()
		observability.XPAwarded().Add(float64(step.xpAwarded))

		stepActor := actor
		if step.request.cascaded {
			stepActor = SystemActor
		}
		recordActivity(ctx, s.activity, s.logger, ActivityEntry{
			Actor:      stepActor,
			Action:     "achievement.unlocked",
			EntityType: "student_achievement",
			EntityID:   strconv.FormatUint(uint64(step.record.ID), 10),
			Metadata: map[string]interface{}{
				"student_id":     studentID,
				"achievement_id": step.achievement.ID,
				"xp_awarded":     step.xpAwarded,
				"outcome":        string(step.outcome),
				"cascaded":       step.request.cascaded,
			},
		})

		if s.publisher == nil {
			continue
		}
		event := AchievementUnlockedEvent{
			StudentID:     studentID,
			AchievementID: step.achievement.ID,
			XPAwarded:     step.xpAwarded,
			Cascaded:      step.request.cascaded,
			UnlockedAt:    s.now().UTC(),
		}
		if step.student != nil {
			event.StudentXP = step.student.XP
			event.StudentLevel = step.student.Level
		}
		if err := s.publisher.PublishUnlocked(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("achievement_id", step.achievement.ID).Msg("failed to publish unlock event")
		}
	}

	s.invalidateProfile(ctx, studentID)
}

func unlockedResponses(steps []progressStep) []dto.UnlockedAchievementResponse {
	responses := make([]dto.UnlockedAchievementResponse, 0)
	for _, step := range steps {
		if !step.unlocked() {
			continue
		}
		responses = append(responses, dto.UnlockedAchievementResponse{
			AchievementID: step.achievement.ID,
			Title:         step.achievement.Title,
			XPAwarded:     step.xpAwarded,
		})
	}
	return responses
}
