package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/service"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func validateContract(t *testing.T, schema *jsonschema.Schema, app *fiber.App, method, path string, body io.Reader) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestStudentProfileContract(t *testing.T) {
	schema := compileSchema(t, "student_profile.schema.json")

	unlockedAt := time.Now().UTC()
	svc := &stubGamificationService{profile: dto.StudentProfileResponse{
		StudentID:     3,
		Name:          "Ana",
		XP:            1110,
		Level:         12,
		XPToNextLevel: 90,
		Unlocked: []dto.StudentAchievementResponse{{
			ID:            1,
			StudentID:     3,
			AchievementID: service.AchievementXPCollector,
			Progress:      1,
			Total:         1,
			Unlocked:      true,
			UnlockedAt:    &unlockedAt,
			Title:         "Coletor de XP",
			Icon:          "gem",
			XP:            100,
		}},
		InProgress: []dto.StudentAchievementResponse{{
			ID:            2,
			StudentID:     3,
			AchievementID: "ach-five-projects",
			Progress:      2,
			Total:         5,
		}},
	}}

	validateContract(t, schema, newAchievementApp(svc, 3, "student"), http.MethodGet, "/api/v1/achievements/students/3", nil)
}

func TestTrackProgressContract(t *testing.T) {
	schema := compileSchema(t, "track_progress.schema.json")

	xp, level := 70, 1
	svc := &stubGamificationService{track: dto.TrackProgressResponse{
		Unlocked:     true,
		XPAwarded:    30,
		Outcome:      string(service.OutcomeUnlocked),
		Progress:     1,
		Total:        1,
		StudentXP:    &xp,
		StudentLevel: &level,
		Cascade:      []dto.UnlockedAchievementResponse{},
	}}

	body, err := json.Marshal(map[string]interface{}{"student_id": 3, "achievement_id": "ach-first-project"})
	require.NoError(t, err)
	validateContract(t, schema, newAchievementApp(svc, 9, "teacher"), http.MethodPost, "/api/v1/achievements/progress", bytes.NewReader(body))
}

func TestPendingActionsContract(t *testing.T) {
	schema := compileSchema(t, "pending_actions.schema.json")

	projectID := uint(1)
	result := dto.EmptyPendingActions()
	result.ProjectsWithoutCompetencies = 1
	result.UpcomingDeadlines = append(result.UpcomingDeadlines, dto.UpcomingDeadline{ProjectID: 1, Title: "Horta", Deadline: time.Now().UTC()})
	result.UpcomingEvents = append(result.UpcomingEvents,
		dto.UpcomingEvent{ID: 4, Title: "Visita", Date: time.Now().UTC(), ProjectID: &projectID},
		dto.UpcomingEvent{ID: 5, Title: "Reunião", Date: time.Now().UTC()},
	)

	svc := &stubPendingActionsService{result: result}
	validateContract(t, schema, newPendingActionsApp(svc, 10, "teacher"), http.MethodGet, "/api/v1/teachers/me/pending-actions", nil)
}
