// Package scheduler enqueues the maintenance jobs on their cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/flashcards/internal/jobs"
)

// pruneSchedule is when old job runs are deleted.
const pruneSchedule = "15 4 * * *"

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Queue receives the runs the scheduler triggers.
type Queue interface {
	Enqueue(job string, noSync bool, trigger string) (string, error)
	EnqueuePruneRuns(retentionDays int) (string, error)
}

// ValidateSchedule checks a five-field cron expression (descriptors such as
// "@daily" are accepted too).
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Scheduler triggers each job with a non-empty schedule.
type Scheduler struct {
	queue         Queue
	schedules     map[string]string
	retentionDays int
	location      *time.Location

	cron      *cron.Cron
	entries   map[string]cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// New creates a scheduler. schedules maps job names to cron expressions; an
// empty expression disables the job. Runs older than retentionDays are
// pruned daily when retentionDays is positive.
func New(queue Queue, schedules map[string]string, retentionDays int, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		queue:         queue,
		schedules:     schedules,
		retentionDays: retentionDays,
		location:      loc,
		cron:          cron.New(cron.WithParser(parser), cron.WithLocation(loc)),
		entries:       make(map[string]cron.EntryID),
	}
}

// Start validates every schedule and starts the cron loop. The scheduler
// stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	for _, job := range s.jobNames() {
		schedule := s.schedules[job]
		if err := ValidateSchedule(schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", schedule, job, err)
		}
	}

	for _, job := range s.jobNames() {
		entryID, err := s.cron.AddFunc(s.schedules[job], func() {
			s.enqueue(job)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job, err)
		}
		s.entries[job] = entryID
	}

	if s.retentionDays > 0 {
		if _, err := s.cron.AddFunc(pruneSchedule, s.prune); err != nil {
			return fmt.Errorf("failed to schedule run pruning: %w", err)
		}
	}

	s.cron.Start()
	s.isRunning = true

	for _, job := range s.jobNames() {
		log.Printf("Scheduler: %s scheduled at '%s' (%s), next run %v",
			job, s.schedules[job], s.location, s.cron.Entry(s.entries[job]).Next)
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for the running entries and stops the cron loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false

	log.Printf("Scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRuns returns the next trigger time of each scheduled job.
func (s *Scheduler) NextRuns() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	next := make(map[string]time.Time)
	now := time.Now().In(s.location)
	for _, job := range s.jobNames() {
		if s.isRunning {
			next[job] = s.cron.Entry(s.entries[job]).Next
			continue
		}
		sched, err := parser.Parse(s.schedules[job])
		if err != nil {
			continue
		}
		next[job] = sched.Next(now)
	}
	return next
}

// Schedules returns the enabled schedules by job name.
func (s *Scheduler) Schedules() map[string]string {
	enabled := make(map[string]string)
	for _, job := range s.jobNames() {
		enabled[job] = s.schedules[job]
	}
	return enabled
}

func (s *Scheduler) jobNames() []string {
	var names []string
	for job, schedule := range s.schedules {
		if schedule != "" {
			names = append(names, job)
		}
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) enqueue(job string) {
	id, err := s.queue.Enqueue(job, false, jobs.TriggerSchedule)
	if err != nil {
		log.Printf("Scheduler: failed to enqueue %s: %v", job, err)
		return
	}
	log.Printf("Scheduler: enqueued %s (task %s)", job, id)
}

func (s *Scheduler) prune() {
	if _, err := s.queue.EnqueuePruneRuns(s.retentionDays); err != nil {
		log.Printf("Scheduler: failed to enqueue run pruning: %v", err)
	}
}
