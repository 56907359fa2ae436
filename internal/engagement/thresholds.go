// Package engagement turns raw per-student facts into engagement and performance metrics,
// cohort rollups, trend series and flat report tables. Every function is pure: tenant scope
// and the reference time are always passed in by the caller.
package engagement

import "github.com/noah-isme/sma-engagement-api/internal/models"

const (
	// DefaultActiveWindowDays is the look-back window used to count interactions.
	DefaultActiveWindowDays = 30
	// DefaultRiskWindowDays flags students inactive for at least this many days.
	DefaultRiskWindowDays = 14

	// MinutesPerInteraction is the fixed time proxy applied to each logged interaction.
	MinutesPerInteraction = 2.5

	HighEngagementMinutes          = 180
	HighEngagementInteractions     = 80
	ModerateEngagementMinutes      = 90
	ModerateEngagementInteractions = 40

	// RiskInteractionCeiling flags students with this many interactions or fewer.
	RiskInteractionCeiling = 5

	ActiveRecencyDays      = 7
	ActiveInteractionFloor = 40
)

// Thresholds groups every tunable cut-off used by the calculator.
type Thresholds struct {
	ActiveWindowDays               int
	RiskWindowDays                 int
	HighEngagementMinutes          int
	HighEngagementInteractions     int
	ModerateEngagementMinutes      int
	ModerateEngagementInteractions int
	RiskInteractionCeiling         int
	ActiveRecencyDays              int
	ActiveInteractionFloor         int
}

// DefaultThresholds returns the standard cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ActiveWindowDays:               DefaultActiveWindowDays,
		RiskWindowDays:                 DefaultRiskWindowDays,
		HighEngagementMinutes:          HighEngagementMinutes,
		HighEngagementInteractions:     HighEngagementInteractions,
		ModerateEngagementMinutes:      ModerateEngagementMinutes,
		ModerateEngagementInteractions: ModerateEngagementInteractions,
		RiskInteractionCeiling:         RiskInteractionCeiling,
		ActiveRecencyDays:              ActiveRecencyDays,
		ActiveInteractionFloor:         ActiveInteractionFloor,
	}
}

// WithWindows returns a copy with the active and risk windows overridden when positive.
func (t Thresholds) WithWindows(activeWindowDays, riskWindowDays int) Thresholds {
	if activeWindowDays > 0 {
		t.ActiveWindowDays = activeWindowDays
	}
	if riskWindowDays > 0 {
		t.RiskWindowDays = riskWindowDays
	}
	return t
}

// ClassifyEngagement evaluates the high band before the moderate band.
func (t Thresholds) ClassifyEngagement(minutes, interactions int) models.EngagementLevel {
	switch {
	case minutes >= t.HighEngagementMinutes || interactions >= t.HighEngagementInteractions:
		return models.EngagementHigh
	case minutes >= t.ModerateEngagementMinutes || interactions >= t.ModerateEngagementInteractions:
		return models.EngagementModerate
	default:
		return models.EngagementLow
	}
}

// IsAtRisk reports whether a student needs intervention.
func (t Thresholds) IsAtRisk(daysSinceLastActivity, interactions int) bool {
	return daysSinceLastActivity >= t.RiskWindowDays || interactions <= t.RiskInteractionCeiling
}

// IsActive is the cohort-level "active student" test. It uses its own cut-offs and is
// independent from ClassifyEngagement.
func (t Thresholds) IsActive(daysSinceLastActivity, interactions int) bool {
	return daysSinceLastActivity <= t.ActiveRecencyDays || interactions >= t.ActiveInteractionFloor
}
