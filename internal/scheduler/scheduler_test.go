package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/flashcards/internal/jobs"
)

type enqueued struct {
	job     string
	trigger string
}

type fakeQueue struct {
	mu     sync.Mutex
	tasks  []enqueued
	pruned []int
}

func (q *fakeQueue) Enqueue(job string, noSync bool, trigger string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, enqueued{job: job, trigger: trigger})
	return "task", nil
}

func (q *fakeQueue) EnqueuePruneRuns(retentionDays int) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pruned = append(q.pruned, retentionDays)
	return "prune", nil
}

func (q *fakeQueue) snapshot() []enqueued {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]enqueued(nil), q.tasks...)
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 3 * * *", true},
		{"*/15 * * * *", true},
		{"@daily", true},
		{"0 3 * *", false},
		{"every day", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNextRunsBeforeStart(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	s := New(&fakeQueue{}, map[string]string{
		jobs.NameBackup: "0 3 * * *",
		jobs.NameSync:   "",
	}, 30, loc)

	next := s.NextRuns()

	require.Len(t, next, 1)
	backup := next[jobs.NameBackup].In(loc)
	assert.Equal(t, 3, backup.Hour())
	assert.Equal(t, 0, backup.Minute())
	assert.True(t, backup.After(time.Now()))
	assert.Equal(t, map[string]string{jobs.NameBackup: "0 3 * * *"}, s.Schedules())
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := New(&fakeQueue{}, map[string]string{jobs.NamePublish: "not a schedule"}, 0, time.UTC)

	err := s.Start(context.Background())

	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestSchedulerEnqueuesJobs(t *testing.T) {
	queue := &fakeQueue{}
	s := New(queue, map[string]string{
		jobs.NameNotify:  "@every 1s",
		jobs.NamePublish: "0 3 1 1 *",
	}, 30, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	defer s.Stop()
	assert.True(t, s.IsRunning())

	next := s.NextRuns()
	assert.Len(t, next, 2)
	assert.WithinDuration(t, time.Now(), next[jobs.NameNotify], 2*time.Second)

	assert.Eventually(t, func() bool {
		return len(queue.snapshot()) > 0
	}, 5*time.Second, 50*time.Millisecond)

	first := queue.snapshot()[0]
	assert.Equal(t, jobs.NameNotify, first.job)
	assert.Equal(t, jobs.TriggerSchedule, first.trigger)
}

func TestSchedulerStopsWithContext(t *testing.T) {
	s := New(&fakeQueue{}, map[string]string{jobs.NameBackup: "0 3 * * *"}, 0, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestPrune(t *testing.T) {
	queue := &fakeQueue{}
	s := New(queue, nil, 14, time.UTC)

	s.prune()

	assert.Equal(t, []int{14}, queue.pruned)
}
