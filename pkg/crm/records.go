// Package crm queries the external case store for support records.
package crm

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mariostorable/friction-engine/pkg/jsonutil"
)

// CaseRecord is one support case as fetched from the CRM, reduced to the
// fields the pipeline consumes.
type CaseRecord struct {
	ID          string
	Number      string
	Subject     string
	Description string
	Status      string
	Priority    string
	Origin      string
	CreatedDate time.Time
}

// Text joins subject and description into the classification input.
func (r CaseRecord) Text() string {
	switch {
	case r.Subject == "":
		return r.Description
	case r.Description == "":
		return r.Subject
	default:
		return r.Subject + "\n\n" + r.Description
	}
}

// rawCaseRecord is the loosely-typed wire shape. CRM orgs customize field
// types freely, so every field goes through tolerant coercion.
type rawCaseRecord struct {
	ID          json.RawMessage `json:"Id"`
	CaseNumber  json.RawMessage `json:"CaseNumber"`
	Subject     json.RawMessage `json:"Subject"`
	Description json.RawMessage `json:"Description"`
	Status      json.RawMessage `json:"Status"`
	Priority    json.RawMessage `json:"Priority"`
	Origin      json.RawMessage `json:"Origin"`
	CreatedDate json.RawMessage `json:"CreatedDate"`
}

// crmTimeLayouts are the creation-timestamp formats seen in the wild.
var crmTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
}

func (raw rawCaseRecord) toCaseRecord() (CaseRecord, bool) {
	id := strings.TrimSpace(jsonutil.FlexibleStringValue(raw.ID))
	if id == "" {
		// A record without an identifier cannot be deduplicated; drop it.
		return CaseRecord{}, false
	}

	rec := CaseRecord{
		ID:          id,
		Number:      jsonutil.FlexibleStringValue(raw.CaseNumber),
		Subject:     jsonutil.FlexibleStringValue(raw.Subject),
		Description: jsonutil.FlexibleStringValue(raw.Description),
		Status:      jsonutil.FlexibleStringValue(raw.Status),
		Priority:    jsonutil.FlexibleStringValue(raw.Priority),
		Origin:      jsonutil.FlexibleStringValue(raw.Origin),
	}

	created := jsonutil.FlexibleStringValue(raw.CreatedDate)
	for _, layout := range crmTimeLayouts {
		if t, err := time.Parse(layout, created); err == nil {
			rec.CreatedDate = t
			break
		}
	}

	return rec, true
}
