package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/models"
	"github.com/noah-isme/pbl-go-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, error) {
	var out []models.ActivityLog
	for i := len(m.entries) - 1; i >= 0; i-- {
		entry := m.entries[i]
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memoryActivityRepo) actions() []string {
	actions := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func TestActivityServiceRecordMasksSensitiveMetadata(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	err := svc.Record(context.Background(), ActivityEntry{
		Actor:      ActivityActor{ID: 1, Role: "Teacher"},
		Action:     "Student.XP_Adjusted",
		EntityType: "Student",
		EntityID:   "5",
		Metadata: map[string]interface{}{
			"email":        "student@example.com",
			"access_token": "secret",
			"delta":        10,
		},
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)

	entry := repo.entries[0]
	require.Equal(t, "teacher", entry.ActorRole)
	require.Equal(t, "student.xp_adjusted", entry.Action)
	require.Equal(t, "student", entry.EntityType)
	require.Equal(t, "***", entry.Metadata["email"])
	require.Equal(t, "***", entry.Metadata["access_token"])
	require.Equal(t, 10, entry.Metadata["delta"])
}

func TestActivityServiceRecordRequiresAction(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, testLogger())
	err := svc.Record(context.Background(), ActivityEntry{EntityType: "student"})
	require.Error(t, err)
}

func TestActivityServiceListClampsLimit(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())
	for i := 0; i < 60; i++ {
		require.NoError(t, svc.Record(context.Background(), ActivityEntry{
			Actor:      SystemActor,
			Action:     "achievement.unlocked",
			EntityType: "student_achievement",
		}))
	}

	entries, err := svc.List(context.Background(), dto.ActivityListRequest{Limit: 1000})
	require.NoError(t, err)
	require.Len(t, entries, defaultActivityLimit)
	require.Equal(t, "system", entries[0].ActorRole)
}
