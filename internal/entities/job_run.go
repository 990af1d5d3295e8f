package entities

import "time"

type JobRunStatus string

const (
	JobRunStatusRunning JobRunStatus = "running"
	JobRunStatusSuccess JobRunStatus = "success"
	JobRunStatusFailed  JobRunStatus = "failed"
)

// JobRun records one execution of a maintenance job (sync, publish, backup, notify).
type JobRun struct {
	ID         string       `gorm:"primaryKey;size:36" json:"id"`
	Job        string       `gorm:"index;size:50" json:"job"`
	Trigger    string       `gorm:"size:20" json:"trigger"` // "cli", "schedule", "api"
	NoSync     bool         `json:"no_sync"`
	Status     JobRunStatus `gorm:"index;size:20" json:"status"`
	Message    string       `gorm:"size:500" json:"message,omitempty"`
	StartedAt  time.Time    `gorm:"index" json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}

func (JobRun) TableName() string {
	return "job_runs"
}

// Duration returns how long the run took, or zero while it is still running.
func (r JobRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
