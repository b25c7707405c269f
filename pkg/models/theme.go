package models

import "time"

// Theme is a reference enumeration entry used to label friction cards.
// The set is managed outside the pipeline (seeded from themes.yaml at
// startup) and read-only at run time. Stored in themes table.
type Theme struct {
	Key       string    `json:"key" yaml:"key"`
	Label     string    `json:"label" yaml:"label"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}
