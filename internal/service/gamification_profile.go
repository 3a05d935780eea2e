package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/pbl-go-api/internal/dto"
)

const profileCachePrefix = "gamification:profile:"

func (s *gamificationService) ListAchievements(ctx context.Context) ([]dto.AchievementResponse, error) {
	achievements, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AchievementResponse, 0, len(achievements))
	for _, achievement := range achievements {
		responses = append(responses, dto.NewAchievementResponse(achievement))
	}
	return responses, nil
}

// SeedCatalog inserts the default catalog entries that are not present yet.
func (s *gamificationService) SeedCatalog(ctx context.Context) (int64, error) {
	inserted, err := s.repo.EnsureAchievements(ctx, DefaultAchievementCatalog())
	if err != nil {
		return 0, fmt.Errorf("seed achievement catalog: %w", err)
	}
	if inserted > 0 {
		s.logger.Info().Int64("inserted", inserted).Msg("achievement catalog seeded")
	}
	return inserted, nil
}

func (s *gamificationService) GetProfile(ctx context.Context, studentID uint) (dto.StudentProfileResponse, error) {
	if cached, ok := s.fetchProfile(ctx, studentID); ok {
		cached.CacheHit = true
		return cached, nil
	}

	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentProfileResponse{}, ErrStudentNotFound
		}
		return dto.StudentProfileResponse{}, err
	}

	rows, err := s.repo.ListStudentAchievements(ctx, studentID)
	if err != nil {
		return dto.StudentProfileResponse{}, err
	}

	profile := dto.StudentProfileResponse{
		StudentID:     student.ID,
		Name:          student.Name,
		XP:            student.XP,
		Level:         student.Level,
		XPToNextLevel: student.XPToNextLevel(),
		Unlocked:      make([]dto.StudentAchievementResponse, 0),
		InProgress:    make([]dto.StudentAchievementResponse, 0),
	}
	for _, row := range rows {
		if row.Unlocked {
			profile.Unlocked = append(profile.Unlocked, dto.NewStudentAchievementResponse(row))
			continue
		}
		profile.InProgress = append(profile.InProgress, dto.NewStudentAchievementResponse(row))
	}

	s.writeProfile(ctx, profile)
	return profile, nil
}

func (s *gamificationService) fetchProfile(ctx context.Context, studentID uint) (dto.StudentProfileResponse, bool) {
	if s.cache == nil {
		return dto.StudentProfileResponse{}, false
	}
	payload, err := s.cache.Get(ctx, profileCacheKey(studentID)).Result()
	if err != nil {
		return dto.StudentProfileResponse{}, false
	}

	var profile dto.StudentProfileResponse
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode profile cache")
		return dto.StudentProfileResponse{}, false
	}
	return profile, true
}

func (s *gamificationService) writeProfile(ctx context.Context, profile dto.StudentProfileResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode profile cache")
		return
	}
	if err := s.cache.Set(ctx, profileCacheKey(profile.StudentID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store profile cache")
	}
}

func (s *gamificationService) invalidateProfile(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, profileCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate profile cache")
	}
}

func profileCacheKey(studentID uint) string {
	return fmt.Sprintf("%s%d", profileCachePrefix, studentID)
}
