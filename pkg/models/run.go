package models

import "github.com/google/uuid"

// Per-account terminal outcomes recorded in the run summary.
const (
	RunStatusSuccess       = "success"
	RunStatusSkipped       = "skipped"
	RunStatusNoCases       = "no_cases"
	RunStatusFailed        = "failed"
	RunStatusSnapshotError = "snapshot_error"
)

// AccountResult is the outcome of processing one account in a run.
type AccountResult struct {
	AccountID   uuid.UUID `json:"account_id"`
	AccountName string    `json:"account_name"`
	Status      string    `json:"status"`
	OFIScore    int       `json:"ofi_score"`
	NewCards    int       `json:"new_cards"`
	Reason      string    `json:"reason,omitempty"` // populated for skipped/failed
}

// RunSummary aggregates one orchestrator pass over the portfolio.
// Every account reaches exactly one terminal status; nothing is dropped.
type RunSummary struct {
	Success  bool            `json:"success"`
	Results  []AccountResult `json:"results"`
	Analyzed int             `json:"analyzed"`
	Skipped  int             `json:"skipped"`
	NoCases  int             `json:"no_cases"`
	Failed   int             `json:"failed"`
	Errors   int             `json:"errors"` // snapshot_error count
}

// Record appends a result and bumps the matching aggregate counter.
// The summary is threaded through the orchestrator loop as an explicit
// accumulator rather than mutated from closures.
func (s *RunSummary) Record(r AccountResult) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case RunStatusSuccess:
		s.Analyzed++
	case RunStatusSkipped:
		s.Skipped++
	case RunStatusNoCases:
		s.NoCases++
	case RunStatusFailed:
		s.Failed++
	case RunStatusSnapshotError:
		s.Errors++
	}
}
