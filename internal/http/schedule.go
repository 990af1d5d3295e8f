package http

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// ScheduleController exposes the cron schedule of the jobs.
type ScheduleController struct {
	schedule Schedule
}

func NewScheduleController(schedule Schedule) *ScheduleController {
	return &ScheduleController{schedule: schedule}
}

// ScheduledJob is a job with its cron expression and next trigger time.
type ScheduledJob struct {
	Job      string    `json:"job"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"next_run"`
}

// GetSchedule handles GET /api/schedule
func (sc *ScheduleController) GetSchedule(c *gin.Context) {
	schedules := sc.schedule.Schedules()
	next := sc.schedule.NextRuns()

	entries := make([]ScheduledJob, 0, len(schedules))
	for job, schedule := range schedules {
		entries = append(entries, ScheduledJob{Job: job, Schedule: schedule, NextRun: next[job]})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].NextRun.Before(entries[j].NextRun)
	})

	c.JSON(http.StatusOK, gin.H{"jobs": entries})
}
