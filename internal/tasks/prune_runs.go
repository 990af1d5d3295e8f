package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// RunPruner deletes old job runs.
type RunPruner interface {
	DeleteRunsBefore(t time.Time) (int64, error)
}

// PruneRunsTask removes job runs older than the configured retention period.
type PruneRunsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for run pruning tasks.
func (t PruneRunsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_job_runs",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneRunsProcessor creates a processor function for PruneRunsTask.
func PruneRunsProcessor(pruner RunPruner) backlite.QueueProcessor[PruneRunsTask] {
	return func(ctx context.Context, task PruneRunsTask) error {
		if pruner == nil {
			return fmt.Errorf("run pruner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}
		cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

		deleted, err := pruner.DeleteRunsBefore(cutoff)
		if err != nil {
			return fmt.Errorf("prune job runs: %w", err)
		}

		log.Printf("[TASK] Pruned %d job runs older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewPruneRunsQueue creates a backlite queue for run pruning tasks.
func NewPruneRunsQueue(pruner RunPruner) backlite.Queue {
	return backlite.NewQueue(PruneRunsProcessor(pruner))
}

// EnqueuePruneRuns schedules the deletion of runs older than retentionDays.
func (c *Client) EnqueuePruneRuns(retentionDays int) (string, error) {
	ids, err := c.client.Add(PruneRunsTask{RetentionDays: retentionDays}).Save()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue run pruning: %w", err)
	}
	return ids[0], nil
}
