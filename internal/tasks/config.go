package tasks

import "time"

// Config holds configuration for the task queue.
type Config struct {
	// Workers is the number of concurrent task workers. Jobs are serialized by
	// the runner anyway. Default: 1
	Workers int

	// MaxRetries is how many times a failed job is retried. Default: 2
	MaxRetries int

	// RetryDelay is the backoff between two attempts of a job. Default: 5m
	RetryDelay time.Duration

	// TaskTimeout bounds a single job attempt. Default: 30m
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to queue. Must exceed
	// TaskTimeout. Default: 45m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// RetentionDuration is how long to keep completed tasks. Default: 72h
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           1,
		MaxRetries:        2,
		RetryDelay:        5 * time.Minute,
		TaskTimeout:       30 * time.Minute,
		ReleaseAfter:      45 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 72 * time.Hour,
	}
}
