package service

import "github.com/noah-isme/pbl-go-api/internal/models"

// Well-known achievement keys unlocked by level and XP thresholds.
const (
	AchievementMotivatedBeginner = "ach-iniciante-motivado"
	AchievementDedicatedStudent  = "ach-estudante-dedicado"
	AchievementExpert            = "ach-expert"
	AchievementXPCollector       = "ach-coletor-xp"
)

// ThresholdMetric names the student attribute a threshold rule compares against.
type ThresholdMetric string

const (
	MetricLevel ThresholdMetric = "level"
	MetricXP    ThresholdMetric = "xp"
)

// ThresholdRule unlocks AchievementID once Metric reaches Minimum.
type ThresholdRule struct {
	AchievementID string
	Metric        ThresholdMetric
	Minimum       int
}

// Satisfied reports whether the rule fires for the given level and XP.
func (r ThresholdRule) Satisfied(level, xp int) bool {
	switch r.Metric {
	case MetricLevel:
		return level >= r.Minimum
	case MetricXP:
		return xp >= r.Minimum
	default:
		return false
	}
}

// ThresholdRules is an ordered rules table. Rules are independent; every satisfied rule fires.
type ThresholdRules []ThresholdRule

// DefaultThresholdRules returns the built-in level and XP thresholds.
func DefaultThresholdRules() ThresholdRules {
	return ThresholdRules{
		{AchievementID: AchievementMotivatedBeginner, Metric: MetricLevel, Minimum: 5},
		{AchievementID: AchievementDedicatedStudent, Metric: MetricLevel, Minimum: 10},
		{AchievementID: AchievementExpert, Metric: MetricLevel, Minimum: 20},
		{AchievementID: AchievementXPCollector, Metric: MetricXP, Minimum: 1000},
	}
}

// Evaluate returns the achievement ids whose thresholds are met, in table order.
func (rules ThresholdRules) Evaluate(level, xp int) []string {
	var keys []string
	for _, rule := range rules {
		if rule.Satisfied(level, xp) {
			keys = append(keys, rule.AchievementID)
		}
	}
	return keys
}

// DefaultAchievementCatalog returns the catalog entries backing the default threshold rules.
func DefaultAchievementCatalog() []models.Achievement {
	return []models.Achievement{
		{ID: AchievementMotivatedBeginner, Title: "Iniciante Motivado", Description: "Alcance o nível 5", XP: 50, Icon: "rocket"},
		{ID: AchievementDedicatedStudent, Title: "Estudante Dedicado", Description: "Alcance o nível 10", XP: 100, Icon: "book"},
		{ID: AchievementExpert, Title: "Expert", Description: "Alcance o nível 20", XP: 250, Icon: "crown"},
		{ID: AchievementXPCollector, Title: "Coletor de XP", Description: "Acumule 1000 XP", XP: 100, Icon: "gem"},
	}
}
