package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	cases := map[int]int{0: 1, 99: 1, 100: 2, 950: 10, 1010: 11, 1999: 20, -5: 1}
	for xp, level := range cases {
		require.Equal(t, level, LevelForXP(xp), "xp=%d", xp)
	}
}

func TestStudentApplyXPKeepsLevelInSync(t *testing.T) {
	student := Student{XP: 950, Level: 10}
	student.ApplyXP(60)
	require.Equal(t, 1010, student.XP)
	require.Equal(t, 11, student.Level)
	require.Equal(t, 90, student.XPToNextLevel())

	student.ApplyXP(-5000)
	require.Equal(t, 0, student.XP)
	require.Equal(t, 1, student.Level)
}

func TestProjectDeadlineParsesSupportedLayouts(t *testing.T) {
	dateOnly := "2026-03-10"
	deadline, ok := Project{NextDeadline: &dateOnly}.Deadline(time.UTC)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), deadline)

	stamp := "2026-03-10T14:30:00Z"
	deadline, ok = Project{NextDeadline: &stamp}.Deadline(time.UTC)
	require.True(t, ok)
	require.Equal(t, 14, deadline.Hour())

	garbage := "next week"
	_, ok = Project{NextDeadline: &garbage}.Deadline(time.UTC)
	require.False(t, ok)

	_, ok = Project{}.Deadline(time.UTC)
	require.False(t, ok)
}
