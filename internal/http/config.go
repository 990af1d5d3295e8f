package http

// RouterConfig contains all dependencies needed to create the HTTP router.
// Nil dependencies disable the routes that need them.
type RouterConfig struct {
	Database Pinger
	Runs     RunStore
	Tasks    TaskQueue
	Jobs     JobCatalog
	Schedule Schedule

	// Application info
	Version string
}
