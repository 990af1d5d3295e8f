package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/flashcards/internal/entities"
	"github.com/mrlokans/flashcards/internal/jobs"
)

// JobQueueName is the queue holding job runs.
const JobQueueName = "flashcards_job"

// JobRunner runs a registered job by name.
type JobRunner interface {
	Run(ctx context.Context, name string, opts jobs.Options) (*entities.JobRun, error)
}

// JobTask runs one maintenance job.
type JobTask struct {
	Job     string `json:"job"`
	NoSync  bool   `json:"no_sync"`
	Trigger string `json:"trigger"`
}

var (
	jobQueueMu     sync.RWMutex
	jobQueueConfig = queueConfig(JobQueueName, DefaultConfig())
)

func queueConfig(name string, cfg Config) backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        name,
		MaxAttempts: cfg.MaxRetries + 1,
		Backoff:     cfg.RetryDelay,
		Timeout:     cfg.TaskTimeout,
		Retention: &backlite.Retention{
			Duration:   cfg.RetentionDuration,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Config returns the queue configuration for job tasks, as set by the last
// NewJobQueue call.
func (t JobTask) Config() backlite.QueueConfig {
	jobQueueMu.RLock()
	defer jobQueueMu.RUnlock()
	return jobQueueConfig
}

// JobProcessor creates a processor function for JobTask.
func JobProcessor(runner JobRunner) backlite.QueueProcessor[JobTask] {
	return func(ctx context.Context, task JobTask) error {
		if runner == nil {
			return fmt.Errorf("job runner not configured")
		}

		trigger := task.Trigger
		if trigger == "" {
			trigger = jobs.TriggerSchedule
		}

		run, err := runner.Run(ctx, task.Job, jobs.Options{NoSync: task.NoSync, Trigger: trigger})
		if errors.Is(err, jobs.ErrUnknownJob) {
			// retrying cannot help
			log.Printf("[TASK] Dropping task for unknown job %q", task.Job)
			return nil
		}
		if err != nil {
			return fmt.Errorf("job %s: %w", task.Job, err)
		}

		log.Printf("[TASK] Job %s finished in %v (run %s)", task.Job, run.Duration().Round(time.Millisecond), run.ID)
		return nil
	}
}

// NewJobQueue creates a backlite queue for job tasks, retried per cfg.
func NewJobQueue(runner JobRunner, cfg Config) backlite.Queue {
	jobQueueMu.Lock()
	jobQueueConfig = queueConfig(JobQueueName, cfg)
	jobQueueMu.Unlock()
	return backlite.NewQueue(JobProcessor(runner))
}
