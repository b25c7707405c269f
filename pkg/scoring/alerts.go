package scoring

import (
	"fmt"
	"time"

	"github.com/mariostorable/friction-engine/pkg/models"
)

// Alert thresholds.
const (
	highFrictionScoreThreshold  = 70
	criticalSeverityCardMinimum = 3
	trendingWorseDeltaMinimum   = 10
)

// BuildAlerts evaluates the alert rules against a scored snapshot. Rules
// are independent, so an account can trip zero to three alerts in one run.
// Every alert expires ttl after now; expired rows are purged by run
// housekeeping and the same condition may re-alert later.
func BuildAlerts(account *models.Account, result Result, trendDelta *int, trendDirection string, ttl time.Duration, now time.Time) []*models.Alert {
	expiresAt := now.Add(ttl)
	var alerts []*models.Alert

	if result.OFIScore >= highFrictionScoreThreshold {
		alerts = append(alerts, &models.Alert{
			AccountID: account.ID,
			AlertType: models.AlertHighFriction,
			Severity:  models.AlertSeverityCritical,
			Title:     fmt.Sprintf("High friction: %s", account.Name),
			Message: fmt.Sprintf("%s scored %d on the friction index, above the %d threshold.",
				account.Name, result.OFIScore, highFrictionScoreThreshold),
			Evidence: map[string]any{
				"ofi_score":  result.OFIScore,
				"threshold":  highFrictionScoreThreshold,
				"card_count": result.CardCount,
			},
			ExpiresAt: expiresAt,
		})
	}

	if result.HighSeverityCount >= criticalSeverityCardMinimum {
		alerts = append(alerts, &models.Alert{
			AccountID: account.ID,
			AlertType: models.AlertCriticalSeverity,
			Severity:  models.AlertSeverityCritical,
			Title:     fmt.Sprintf("Critical severity cluster: %s", account.Name),
			Message: fmt.Sprintf("%s has %d high-severity friction cards in the scoring window.",
				account.Name, result.HighSeverityCount),
			Evidence: map[string]any{
				"high_severity_count": result.HighSeverityCount,
				"threshold":           criticalSeverityCardMinimum,
			},
			ExpiresAt: expiresAt,
		})
	}

	if trendDirection == models.TrendWorsening && trendDelta != nil && *trendDelta > trendingWorseDeltaMinimum {
		alerts = append(alerts, &models.Alert{
			AccountID: account.ID,
			AlertType: models.AlertTrendingWorse,
			Severity:  models.AlertSeverityWarning,
			Title:     fmt.Sprintf("Friction trending worse: %s", account.Name),
			Message: fmt.Sprintf("%s's friction score rose %d points since the previous snapshot.",
				account.Name, *trendDelta),
			Evidence: map[string]any{
				"trend_delta": *trendDelta,
				"ofi_score":   result.OFIScore,
			},
			ExpiresAt: expiresAt,
		})
	}

	return alerts
}
