package jobs

import "context"

// SyncJob reconciles the local collection with the remote account.
type SyncJob struct {
	Collection Collection
}

func (j *SyncJob) Name() string { return NameSync }

// Run syncs even when opts.NoSync is set: syncing is the whole job.
func (j *SyncJob) Run(ctx context.Context, opts Options) error {
	opts.NoSync = false
	return syncFirst(ctx, j.Collection, opts)
}
