package http

import (
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/flashcards/internal/jobs"
)

// JobsController triggers maintenance jobs through the task queue.
type JobsController struct {
	queue   TaskQueue
	catalog JobCatalog
}

func NewJobsController(queue TaskQueue, catalog JobCatalog) *JobsController {
	return &JobsController{queue: queue, catalog: catalog}
}

// RunJobRequest is the optional body of a job trigger.
type RunJobRequest struct {
	NoSync bool `json:"no_sync" form:"no_sync"`
}

// RunJobResponse identifies the enqueued task.
type RunJobResponse struct {
	TaskID string `json:"task_id"`
	Job    string `json:"job"`
	NoSync bool   `json:"no_sync"`
}

// ListJobs handles GET /api/jobs
func (jc *JobsController) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": jc.catalog.Names()})
}

// RunJob handles POST /api/jobs/:name/run
func (jc *JobsController) RunJob(c *gin.Context) {
	name := c.Param("name")
	if !slices.Contains(jc.catalog.Names(), name) {
		respondBadRequest(c, jobs.ErrUnknownJob.Error()+": "+name)
		return
	}

	var req RunJobRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	taskID, err := jc.queue.Enqueue(name, req.NoSync, jobs.TriggerAPI)
	if err != nil {
		respondInternalError(c, err, "enqueue "+name)
		return
	}

	respondAccepted(c, "job enqueued", RunJobResponse{TaskID: taskID, Job: name, NoSync: req.NoSync})
}
