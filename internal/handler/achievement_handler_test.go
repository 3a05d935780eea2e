package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/handler"
	"github.com/noah-isme/pbl-go-api/internal/service"
)

type stubGamificationService struct {
	track       dto.TrackProgressResponse
	trackErr    error
	profile     dto.StudentProfileResponse
	profileErr  error
	adjust      dto.XPAdjustmentResponse
	adjustErr   error
	list        []dto.AchievementResponse
	lastTrack   dto.TrackProgressRequest
	lastActor   service.ActivityActor
	lastProfile uint
}

func (s *stubGamificationService) TrackProgress(_ context.Context, payload dto.TrackProgressRequest, actor service.ActivityActor) (dto.TrackProgressResponse, error) {
	s.lastTrack = payload
	s.lastActor = actor
	return s.track, s.trackErr
}

func (s *stubGamificationService) CheckLevelAchievements(context.Context, uint, int, int) ([]dto.UnlockedAchievementResponse, error) {
	return nil, nil
}

func (s *stubGamificationService) AdjustXP(_ context.Context, _ uint, _ dto.AdjustXPRequest, actor service.ActivityActor) (dto.XPAdjustmentResponse, error) {
	s.lastActor = actor
	return s.adjust, s.adjustErr
}

func (s *stubGamificationService) ListAchievements(context.Context) ([]dto.AchievementResponse, error) {
	return s.list, nil
}

func (s *stubGamificationService) GetProfile(_ context.Context, studentID uint) (dto.StudentProfileResponse, error) {
	s.lastProfile = studentID
	return s.profile, s.profileErr
}

func (s *stubGamificationService) SeedCatalog(context.Context) (int64, error) {
	return 0, nil
}

func newAchievementApp(svc service.GamificationService, userID uint, role string) *fiber.App {
	h := handler.NewAchievementHandler(svc, zerolog.Nop())
	return newApp("/api/v1/achievements", userID, role, h.Register)
}

func TestAchievementHandlerTrackProgress(t *testing.T) {
	xp, level := 1110, 12
	svc := &stubGamificationService{track: dto.TrackProgressResponse{
		Unlocked:     true,
		XPAwarded:    60,
		Outcome:      string(service.OutcomeUnlocked),
		Progress:     1,
		Total:        1,
		StudentXP:    &xp,
		StudentLevel: &level,
		Cascade:      []dto.UnlockedAchievementResponse{{AchievementID: service.AchievementXPCollector, XPAwarded: 100}},
	}}
	app := newAchievementApp(svc, 7, "teacher")

	resp, env := doRequest(t, app, http.MethodPost, "/api/v1/achievements/progress", map[string]interface{}{
		"student_id":     1,
		"achievement_id": "ach-final-presentation",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
	require.Equal(t, "achievement unlocked", env.Message)

	var result dto.TrackProgressResponse
	decodeData(t, env, &result)
	require.Equal(t, 1110, *result.StudentXP)
	require.Len(t, result.Cascade, 1)

	require.Equal(t, uint(1), svc.lastTrack.StudentID)
	require.Equal(t, service.ActivityActor{ID: 7, Role: "teacher"}, svc.lastActor)
}

func TestAchievementHandlerTrackProgressOutcomeMessages(t *testing.T) {
	cases := map[service.TrackOutcome]string{
		service.OutcomeProgressed:          "progress recorded",
		service.OutcomeAlreadyUnlocked:     "achievement already unlocked",
		service.OutcomeAchievementNotFound: "achievement not found",
		service.OutcomeStudentMissing:      "achievement unlocked; student not found, xp not applied",
	}
	for outcome, message := range cases {
		svc := &stubGamificationService{track: dto.TrackProgressResponse{Outcome: string(outcome)}}
		app := newAchievementApp(svc, 7, "coordinator")

		resp, env := doRequest(t, app, http.MethodPost, "/api/v1/achievements/progress", map[string]interface{}{
			"student_id":     1,
			"achievement_id": "ach-x",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, message, env.Message)
	}
}

func TestAchievementHandlerTrackProgressRequiresStaff(t *testing.T) {
	svc := &stubGamificationService{}

	resp, _ := doRequest(t, newAchievementApp(svc, 3, "student"), http.MethodPost, "/api/v1/achievements/progress", map[string]interface{}{"student_id": 3})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, newAchievementApp(svc, 0, ""), http.MethodPost, "/api/v1/achievements/progress", map[string]interface{}{"student_id": 3})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAchievementHandlerTrackProgressValidation(t *testing.T) {
	svc := &stubGamificationService{trackErr: validationError(t, dto.TrackProgressRequest{})}
	app := newAchievementApp(svc, 7, "teacher")

	resp, env := doRequest(t, app, http.MethodPost, "/api/v1/achievements/progress", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, env.Success)

	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Details, &details))
	require.Equal(t, "required", details["StudentID"])
	require.Equal(t, "required", details["AchievementID"])
}

func TestAchievementHandlerProfileAccess(t *testing.T) {
	svc := &stubGamificationService{profile: dto.StudentProfileResponse{StudentID: 3, XP: 250, Level: 3}}

	resp, env := doRequest(t, newAchievementApp(svc, 3, "student"), http.MethodGet, "/api/v1/achievements/students/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile dto.StudentProfileResponse
	decodeData(t, env, &profile)
	require.Equal(t, 250, profile.XP)

	resp, _ = doRequest(t, newAchievementApp(svc, 4, "student"), http.MethodGet, "/api/v1/achievements/students/3", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, newAchievementApp(svc, 9, "teacher"), http.MethodGet, "/api/v1/achievements/students/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, uint(3), svc.lastProfile)

	resp, _ = doRequest(t, newAchievementApp(svc, 9, "teacher"), http.MethodGet, "/api/v1/achievements/students/abc", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAchievementHandlerProfileNotFound(t *testing.T) {
	svc := &stubGamificationService{profileErr: service.ErrStudentNotFound}

	resp, env := doRequest(t, newAchievementApp(svc, 9, "teacher"), http.MethodGet, "/api/v1/achievements/students/3", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "student not found", env.Message)
}

func TestAchievementHandlerAdjustXP(t *testing.T) {
	svc := &stubGamificationService{adjust: dto.XPAdjustmentResponse{StudentID: 3, XP: 500, Level: 6}}

	resp, env := doRequest(t, newAchievementApp(svc, 9, "teacher"), http.MethodPost, "/api/v1/achievements/students/3/xp", map[string]interface{}{
		"delta":  130,
		"reason": "peer review",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result dto.XPAdjustmentResponse
	decodeData(t, env, &result)
	require.Equal(t, 6, result.Level)

	svc.adjustErr = service.ErrStudentNotFound
	resp, _ = doRequest(t, newAchievementApp(svc, 9, "teacher"), http.MethodPost, "/api/v1/achievements/students/3/xp", map[string]interface{}{"delta": 1, "reason": "bonus"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAchievementHandlerList(t *testing.T) {
	svc := &stubGamificationService{list: []dto.AchievementResponse{{ID: "a", XP: 10}, {ID: "b", XP: 20}}}

	resp, env := doRequest(t, newAchievementApp(svc, 3, "student"), http.MethodGet, "/api/v1/achievements/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var meta map[string]int
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	require.Equal(t, 2, meta["total"])
}
