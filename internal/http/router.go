package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)

	api := router.Group("/api")

	if cfg.Runs != nil {
		runsController := NewRunsController(cfg.Runs)
		api.GET("/runs", runsController.ListRuns)
	}

	if cfg.Tasks != nil && cfg.Jobs != nil {
		jobsController := NewJobsController(cfg.Tasks, cfg.Jobs)
		api.GET("/jobs", jobsController.ListJobs)
		api.POST("/jobs/:name/run", jobsController.RunJob)

		tasksController := NewTasksController(cfg.Tasks)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	if cfg.Schedule != nil {
		scheduleController := NewScheduleController(cfg.Schedule)
		api.GET("/schedule", scheduleController.GetSchedule)
	}

	return router
}
