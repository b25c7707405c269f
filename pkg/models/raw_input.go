package models

import (
	"time"

	"github.com/google/uuid"
)

// Source system tags for raw inputs.
const (
	SourceCase = "case"
	SourceNote = "note"
)

// RawInput is one ingested support record (case or note) awaiting or past
// classification. The (account_id, source, source_record_id) triple is
// unique, which is what makes re-ingestion of an unchanged fetch window a
// no-op. Stored in raw_inputs table.
type RawInput struct {
	ID             uuid.UUID      `json:"id"`
	AccountID      uuid.UUID      `json:"account_id"`
	Source         string         `json:"source"`           // e.g. "case"
	SourceRecordID string         `json:"source_record_id"` // CRM record identifier
	Text           string         `json:"text"`
	Metadata       map[string]any `json:"metadata,omitempty"` // source fields: number, status, priority, origin, created date
	Processed      bool           `json:"processed"`
	CreatedAt      time.Time      `json:"created_at"`
}
