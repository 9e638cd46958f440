package model

import (
	"time"
)

// ReconcileLog records one run of the nightly derived-state
// reconciliation job.
type ReconcileLog struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	RunID             string    `gorm:"type:varchar(50);index" json:"run_id"`
	RowsChecked       int64     `json:"rows_checked"`
	RowsRepaired      int64     `json:"rows_repaired"`
	StaleAssignments  int64     `json:"stale_assignments"` // supplementary rows whose student is no longer red
	DurationMs        int64     `json:"duration_ms"`
	Status            string    `gorm:"type:varchar(20)" json:"status"` // success, failed
	Error             string    `gorm:"type:text" json:"error,omitempty"`
}
