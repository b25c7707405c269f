package models

import (
	"time"

	"github.com/google/uuid"
)

// Trend directions comparing a snapshot to the account's previous one.
const (
	TrendWorsening = "worsening"
	TrendImproving = "improving"
	TrendStable    = "stable"
)

// ThemeAggregate is one entry of a snapshot's top-theme list.
type ThemeAggregate struct {
	ThemeKey    string  `json:"theme_key"`
	Count       int     `json:"count"`
	AvgSeverity float64 `json:"avg_severity"`
}

// ScoreBreakdown records every intermediate of the OFI computation so the
// UI layer can show its work. Persisted verbatim as JSONB.
type ScoreBreakdown struct {
	WeightedScore     int     `json:"weighted_score"`
	BaseScore         float64 `json:"base_score"`
	FrictionDensity   float64 `json:"friction_density"`
	DensityMultiplier float64 `json:"density_multiplier"`
	HighSeverityBoost int     `json:"high_severity_boost"`
	CardCount         int     `json:"card_count"`
}

// AccountSnapshot is one scored observation of an account on a calendar
// day. At most one snapshot exists per (account_id, snapshot_date); the
// orchestrator pre-checks and the table carries a unique constraint as a
// backstop. Stored in account_snapshots table.
type AccountSnapshot struct {
	ID                uuid.UUID        `json:"id"`
	AccountID         uuid.UUID        `json:"account_id"`
	SnapshotDate      time.Time        `json:"snapshot_date"` // date only, UTC
	OFIScore          int              `json:"ofi_score"`     // 0-100, higher is worse
	CardCount         int              `json:"card_count"`
	HighSeverityCount int              `json:"high_severity_count"`
	CaseVolume        int              `json:"case_volume"`
	TopThemes         []ThemeAggregate `json:"top_themes"`
	Breakdown         ScoreBreakdown   `json:"score_breakdown"`
	TrendDelta        *int             `json:"trend_delta,omitempty"` // nil on first snapshot
	TrendDirection    string           `json:"trend_direction"`
	CreatedAt         time.Time        `json:"created_at"`
}
