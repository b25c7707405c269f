package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert types raised by the alert engine.
const (
	AlertHighFriction     = "high_friction"
	AlertCriticalSeverity = "critical_severity"
	AlertTrendingWorse    = "trending_worse"
)

// Alert severity labels.
const (
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// Alert is one threshold-triggered notification for an account. Alerts
// carry a fixed expiry; expired rows are purged by housekeeping at the
// start of each run and the same condition may re-alert later without
// suppression. Stored in alerts table.
type Alert struct {
	ID        uuid.UUID      `json:"id"`
	AccountID uuid.UUID      `json:"account_id"`
	AlertType string         `json:"alert_type"`
	Severity  string         `json:"severity"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Evidence  map[string]any `json:"evidence,omitempty"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
}
