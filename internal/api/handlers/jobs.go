package handlers

import (
	"net/http"

	"github.com/wonny/fscore/internal/scheduler"
)

// JobsHandler reports scheduler state
type JobsHandler struct {
	scheduler *scheduler.Scheduler
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(s *scheduler.Scheduler) *JobsHandler {
	return &JobsHandler{scheduler: s}
}

// JobStatus is one job's statistics plus its next run
type JobStatus struct {
	scheduler.JobStats
	NextRun string `json:"next_run,omitempty"`
}

// List returns statistics for every registered job
// GET /api/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	stats := h.scheduler.GetJobStats()

	out := make([]JobStatus, 0, len(stats))
	for _, name := range h.scheduler.GetAllJobs() {
		status := JobStatus{JobStats: stats[name]}
		if next, ok := h.scheduler.NextRun(name); ok && !next.IsZero() {
			status.NextRun = next.Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, status)
	}
	respondJSON(w, http.StatusOK, out)
}
