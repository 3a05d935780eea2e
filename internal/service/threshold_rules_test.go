package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultThresholdRulesEvaluate(t *testing.T) {
	rules := DefaultThresholdRules()

	cases := []struct {
		name  string
		level int
		xp    int
		want  []string
	}{
		{name: "nothing reached", level: 4, xp: 399, want: nil},
		{name: "level five", level: 5, xp: 400, want: []string{AchievementMotivatedBeginner}},
		{name: "level ten", level: 10, xp: 900, want: []string{AchievementMotivatedBeginner, AchievementDedicatedStudent}},
		{name: "xp only", level: 1, xp: 1000, want: []string{AchievementXPCollector}},
		{name: "everything", level: 20, xp: 1900, want: []string{AchievementMotivatedBeginner, AchievementDedicatedStudent, AchievementExpert, AchievementXPCollector}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, rules.Evaluate(tc.level, tc.xp))
		})
	}
}

func TestThresholdRulesAreMonotonic(t *testing.T) {
	rules := DefaultThresholdRules()

	previous := map[string]bool{}
	for level := 1; level <= 25; level++ {
		xp := (level - 1) * 100
		current := map[string]bool{}
		for _, key := range rules.Evaluate(level, xp) {
			current[key] = true
		}
		for key := range previous {
			require.True(t, current[key], "rule %s stopped firing at level %d", key, level)
		}
		previous = current
	}
}

func TestThresholdRuleUnknownMetric(t *testing.T) {
	rule := ThresholdRule{AchievementID: "x", Metric: "streak", Minimum: 1}
	require.False(t, rule.Satisfied(100, 100000))
}

func TestCatalogCoversDefaultRules(t *testing.T) {
	catalog := map[string]int{}
	for _, item := range DefaultAchievementCatalog() {
		catalog[item.ID] = item.XP
	}
	for _, rule := range DefaultThresholdRules() {
		xp, ok := catalog[rule.AchievementID]
		require.True(t, ok, "missing catalog entry for %s", rule.AchievementID)
		require.Positive(t, xp)
	}
}
