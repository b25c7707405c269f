package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mariostorable/friction-engine/pkg/models"
)

func testAccount() *models.Account {
	return &models.Account{ID: uuid.New(), Name: "Acme Storage"}
}

func alertTypes(alerts []*models.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.AlertType)
	}
	return out
}

func TestBuildAlerts_HighFrictionBoundary(t *testing.T) {
	now := time.Now()

	at70 := BuildAlerts(testAccount(), Result{OFIScore: 70}, nil, models.TrendStable, 7*24*time.Hour, now)
	if len(at70) != 1 || at70[0].AlertType != models.AlertHighFriction {
		t.Errorf("score 70: alerts = %v, want exactly high_friction", alertTypes(at70))
	}
	if at70[0].Severity != models.AlertSeverityCritical {
		t.Errorf("severity = %q, want critical", at70[0].Severity)
	}

	at69 := BuildAlerts(testAccount(), Result{OFIScore: 69}, nil, models.TrendStable, 7*24*time.Hour, now)
	if len(at69) != 0 {
		t.Errorf("score 69: alerts = %v, want none", alertTypes(at69))
	}
}

func TestBuildAlerts_CriticalSeverity(t *testing.T) {
	now := time.Now()

	alerts := BuildAlerts(testAccount(), Result{OFIScore: 40, HighSeverityCount: 3}, nil, models.TrendStable, time.Hour, now)
	if len(alerts) != 1 || alerts[0].AlertType != models.AlertCriticalSeverity {
		t.Errorf("alerts = %v, want exactly critical_severity", alertTypes(alerts))
	}

	alerts = BuildAlerts(testAccount(), Result{OFIScore: 40, HighSeverityCount: 2}, nil, models.TrendStable, time.Hour, now)
	if len(alerts) != 0 {
		t.Errorf("two high-severity cards: alerts = %v, want none", alertTypes(alerts))
	}
}

func TestBuildAlerts_TrendingWorse(t *testing.T) {
	now := time.Now()
	delta := 15

	alerts := BuildAlerts(testAccount(), Result{OFIScore: 40}, &delta, models.TrendWorsening, time.Hour, now)
	if len(alerts) != 1 || alerts[0].AlertType != models.AlertTrendingWorse {
		t.Errorf("alerts = %v, want exactly trending_worse", alertTypes(alerts))
	}
	if alerts[0].Severity != models.AlertSeverityWarning {
		t.Errorf("severity = %q, want warning", alerts[0].Severity)
	}

	// Worsening but delta at the minimum does not alert.
	delta = 10
	alerts = BuildAlerts(testAccount(), Result{OFIScore: 40}, &delta, models.TrendWorsening, time.Hour, now)
	if len(alerts) != 0 {
		t.Errorf("delta 10: alerts = %v, want none", alertTypes(alerts))
	}

	// Large delta without the worsening direction does not alert.
	delta = 15
	alerts = BuildAlerts(testAccount(), Result{OFIScore: 40}, &delta, models.TrendStable, time.Hour, now)
	if len(alerts) != 0 {
		t.Errorf("stable direction: alerts = %v, want none", alertTypes(alerts))
	}
}

func TestBuildAlerts_AllThreeFire(t *testing.T) {
	now := time.Now()
	delta := 25

	alerts := BuildAlerts(testAccount(), Result{OFIScore: 85, HighSeverityCount: 4, CardCount: 6},
		&delta, models.TrendWorsening, 7*24*time.Hour, now)
	if len(alerts) != 3 {
		t.Fatalf("alerts = %v, want all three", alertTypes(alerts))
	}
	for _, a := range alerts {
		if !a.ExpiresAt.Equal(now.Add(7 * 24 * time.Hour)) {
			t.Errorf("alert %s expires %v, want creation+7d", a.AlertType, a.ExpiresAt)
		}
		if a.Title == "" || a.Message == "" {
			t.Errorf("alert %s missing title or message", a.AlertType)
		}
		if len(a.Evidence) == 0 {
			t.Errorf("alert %s missing evidence payload", a.AlertType)
		}
	}
}
