package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/flashcards/internal/entities"
)

// Pinger checks the state database connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunStore lists recorded job runs.
type RunStore interface {
	ListRuns(job string, limit int) ([]entities.JobRun, error)
}

// TaskQueue enqueues job runs and reports their progress.
type TaskQueue interface {
	Enqueue(job string, noSync bool, trigger string) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// JobCatalog tells which jobs exist.
type JobCatalog interface {
	Names() []string
}

// Schedule reports the cron schedules of the jobs.
type Schedule interface {
	Schedules() map[string]string
	NextRuns() map[string]time.Time
}
