// Package pipeline runs the friction analysis pass over the account
// portfolio: ingest new case records, classify them, score each account,
// and persist snapshots and alerts.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariostorable/friction-engine/pkg/crm"
	"github.com/mariostorable/friction-engine/pkg/models"
)

// FilterNew returns the case records whose source identifier has not been
// ingested yet. Order is preserved; the fetch is newest-first and
// classification follows that order.
func FilterNew(records []crm.CaseRecord, existing map[string]bool) []crm.CaseRecord {
	fresh := make([]crm.CaseRecord, 0, len(records))
	for _, rec := range records {
		if !existing[rec.ID] {
			fresh = append(fresh, rec)
		}
	}
	return fresh
}

// toRawInput maps a fetched case record onto the ingestion row. The
// source triple (account, source, record id) carries the dedup guarantee;
// everything else is display metadata for the UI layer.
func toRawInput(accountID uuid.UUID, rec crm.CaseRecord) *models.RawInput {
	metadata := map[string]any{
		"case_number": rec.Number,
		"status":      rec.Status,
		"priority":    rec.Priority,
		"origin":      rec.Origin,
	}
	if !rec.CreatedDate.IsZero() {
		metadata["created_date"] = rec.CreatedDate.UTC().Format(time.RFC3339)
	}

	return &models.RawInput{
		AccountID:      accountID,
		Source:         models.SourceCase,
		SourceRecordID: rec.ID,
		Text:           rec.Text(),
		Metadata:       metadata,
	}
}
