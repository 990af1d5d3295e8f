// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Collection Access
//
//   - anki.Bridge: sync, export and due counts delegated to the bridge process (internal/anki/bridge.go)
//   - jobs.Collection: what the jobs need from the local collection (internal/jobs/job.go)
//
// ## Job Collaborators
//
//   - jobs.SiteBuilder: turns the generated Markdown into the site (internal/jobs/publish.go)
//   - jobs.MailSender: delivers the backup email (internal/jobs/backup.go)
//   - jobs.Messenger, jobs.MessageState: chat reminder and its last message ID (internal/jobs/notify.go)
//
// ## State and Queue
//
//   - jobs.RunStore, tasks.RunPruner, http.RunStore: job run history (internal/database)
//   - tasks.JobRunner, scheduler.Queue, http.TaskQueue: job execution through the task queue
//
// # Adding a New Job
//
//  1. Implement jobs.Job in internal/jobs/
//
//     type VacuumJob struct {
//     Collection Collection
//     }
//
//     func (j *VacuumJob) Name() string { return "vacuum" }
//     func (j *VacuumJob) Run(ctx context.Context, opts Options) error
//
//  2. Register it in cli.NewRegistry; the daemon API and the task queue
//     pick it up from the registry.
//
//  3. Give it a schedule in config.JobSchedules and a command in main.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the list.
package interfaces
