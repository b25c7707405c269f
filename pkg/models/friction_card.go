package models

import (
	"time"

	"github.com/google/uuid"
)

// Theme keys recognized by the classifier. Anything outside this set is
// normalized to ThemeOther before persisting.
const (
	ThemeBillingConfusion   = "billing_confusion"
	ThemeIntegrationFailure = "integration_failure"
	ThemeProductGap         = "product_gap"
	ThemeOnboardingStruggle = "onboarding_struggle"
	ThemePerformance        = "performance"
	ThemeSupportExperience  = "support_experience"
	ThemeDataQuality        = "data_quality"
	ThemeOther              = "other"
)

// Sentiment labels attached to friction cards.
const (
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentPositive = "positive"
)

// Severity bounds for friction cards. Values outside the range coming back
// from the classification service are defaulted to SeverityDefault.
const (
	SeverityMin     = 1
	SeverityMax     = 5
	SeverityDefault = 3
)

// FrictionCard is the structured judgment produced by classifying one
// RawInput. Cards are written once and never mutated; re-running the
// pipeline never re-classifies an already-processed input.
// Stored in friction_cards table.
type FrictionCard struct {
	ID         uuid.UUID `json:"id"`
	AccountID  uuid.UUID `json:"account_id"`
	RawInputID uuid.UUID `json:"raw_input_id"`
	Summary    string    `json:"summary"`
	ThemeKey   string    `json:"theme_key"`
	Severity   int       `json:"severity"` // 1-5
	Sentiment  string    `json:"sentiment"`
	RootCause  string    `json:"root_cause"`
	IsFriction bool      `json:"is_friction"` // false for ordinary support traffic
	Confidence float64   `json:"confidence"`  // 0.0-1.0
	CreatedAt  time.Time `json:"created_at"`
}

// ValidThemeKey reports whether key is one of the recognized theme keys.
func ValidThemeKey(key string) bool {
	switch key {
	case ThemeBillingConfusion, ThemeIntegrationFailure, ThemeProductGap,
		ThemeOnboardingStruggle, ThemePerformance, ThemeSupportExperience,
		ThemeDataQuality, ThemeOther:
		return true
	}
	return false
}
