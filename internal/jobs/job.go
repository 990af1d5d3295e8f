// Package jobs implements the maintenance jobs: sync, publish, backup and
// notify. Each job runs the same way from the command line, the scheduler
// or the HTTP API.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/mrlokans/flashcards/internal/collection"
	"github.com/mrlokans/flashcards/internal/entities"
	"github.com/mrlokans/flashcards/internal/progress"
)

// Job names.
const (
	NameSync    = "sync"
	NamePublish = "publish"
	NameBackup  = "backup"
	NameNotify  = "notify"
)

// Triggers recorded on job runs.
const (
	TriggerCLI      = "cli"
	TriggerSchedule = "schedule"
	TriggerAPI      = "api"
)

var ErrUnknownJob = errors.New("unknown job")

// Options tune a single run.
type Options struct {
	// NoSync skips the initial sync with the remote account.
	NoSync bool
	// Out receives the progress lines. Defaults to os.Stdout.
	Out io.Writer
	// Trigger tells what started the run.
	Trigger string
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

type Job interface {
	Name() string
	Run(ctx context.Context, opts Options) error
}

// Collection is the part of collection.Wrapper the jobs use.
type Collection interface {
	Sync(ctx context.Context) error
	AllDecks(ctx context.Context) ([]*entities.Deck, error)
	DeckStats(ctx context.Context) (map[int64]collection.DeckStats, error)
	TotalStats(ctx context.Context) (collection.DeckStats, error)
	MediaFiles() ([]collection.MediaFile, error)
	Export(ctx context.Context, deck *entities.Deck, dir string, kind collection.ExportKind) (string, error)
	DueCounts(ctx context.Context) (entities.DueCounts, error)
}

var _ Collection = (*collection.Wrapper)(nil)

// syncFirst syncs the collection unless the run opted out.
func syncFirst(ctx context.Context, col Collection, opts Options) error {
	if opts.NoSync {
		return nil
	}
	return progress.Step(opts.out(), "Syncing", func() error {
		return col.Sync(ctx)
	})
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}

// Registry maps job names to jobs.
type Registry struct {
	jobs map[string]Job
}

func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{jobs: make(map[string]Job, len(jobs))}
	for _, job := range jobs {
		r.jobs[job.Name()] = job
	}
	return r
}

// Get returns the job registered under name.
func (r *Registry) Get(name string) (Job, error) {
	job, ok := r.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	return job, nil
}

// Names returns the registered job names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
