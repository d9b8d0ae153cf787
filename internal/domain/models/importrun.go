// internal/domain/models/importrun.go
package models

import "time"

// ImportRun records the outcome of one roster batch.
// StartedAt is indexed for the recent-imports view.
type ImportRun struct {
	RunID      string    `bson:"_id" json:"run_id"` // uuid
	Source     string    `bson:"source" json:"source"`
	Rows       int       `bson:"rows" json:"rows"`
	NumCreated int       `bson:"num_created" json:"numCreated"`
	NumUpdated int       `bson:"num_updated" json:"numUpdated"`
	Errors     []string  `bson:"errors" json:"errors"`
	Resolved   int       `bson:"resolved" json:"resolved"` // forward references settled by reconciliation
	Pending    int       `bson:"pending" json:"pending"`   // forward references still open afterwards
	StartedAt  time.Time `bson:"started_at" json:"started_at"`
	DurationMS int64     `bson:"duration_ms" json:"duration_ms"`
}
