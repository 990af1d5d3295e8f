package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/flashcards/internal/entities"
)

const maxRunMessageLength = 500

// RunStore records job runs.
type RunStore interface {
	CreateRun(run *entities.JobRun) error
	FinishRun(id string, status entities.JobRunStatus, message string, finishedAt time.Time) error
}

// Runner executes registered jobs one at a time, recording each run when a
// store is configured.
type Runner struct {
	registry *Registry
	store    RunStore

	// jobs share the collection and the docs tree
	mu  sync.Mutex
	now func() time.Time
}

// NewRunner creates a runner. store may be nil.
func NewRunner(registry *Registry, store RunStore) *Runner {
	return &Runner{
		registry: registry,
		store:    store,
		now:      time.Now,
	}
}

// Registry returns the jobs the runner knows.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Run executes the job registered under name and returns its run record
// along with the job error.
func (r *Runner) Run(ctx context.Context, name string, opts Options) (*entities.JobRun, error) {
	job, err := r.registry.Get(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	run := &entities.JobRun{
		ID:        uuid.NewString(),
		Job:       name,
		Trigger:   opts.Trigger,
		NoSync:    opts.NoSync,
		Status:    entities.JobRunStatusRunning,
		StartedAt: r.now().UTC(),
	}
	if r.store != nil {
		if err := r.store.CreateRun(run); err != nil {
			log.Printf("Job %s: failed to record run: %v", name, err)
		}
	}
	log.Printf("Job %s: started (run %s, trigger %q)", name, run.ID, run.Trigger)

	jobErr := job.Run(ctx, opts)

	finished := r.now().UTC()
	run.FinishedAt = &finished
	run.Status = entities.JobRunStatusSuccess
	if jobErr != nil {
		run.Status = entities.JobRunStatusFailed
		run.Message = truncate(jobErr.Error(), maxRunMessageLength)
		log.Printf("Job %s: failed after %v: %v", name, run.Duration(), jobErr)
	} else {
		log.Printf("Job %s: completed in %v", name, run.Duration())
	}

	if r.store != nil {
		if err := r.store.FinishRun(run.ID, run.Status, run.Message, finished); err != nil {
			log.Printf("Job %s: failed to record run outcome: %v", name, err)
		}
	}

	return run, jobErr
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
