package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/flashcards/internal/entities"
)

const maxRunsLimit = 500

// RunsController exposes the job run history.
type RunsController struct {
	store RunStore
}

func NewRunsController(store RunStore) *RunsController {
	return &RunsController{store: store}
}

// RunsResponse lists job runs, newest first.
type RunsResponse struct {
	Runs []entities.JobRun `json:"runs"`
}

// ListRuns handles GET /api/runs?job=&limit=
func (rc *RunsController) ListRuns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := rc.store.ListRuns(c.Query("job"), limit)
	if err != nil {
		respondInternalError(c, err, "list runs")
		return
	}
	if runs == nil {
		runs = []entities.JobRun{}
	}

	c.JSON(http.StatusOK, RunsResponse{Runs: runs})
}
