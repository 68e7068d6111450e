package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	JobCachePrune      = "cache_prune"
	JobTrendingRefresh = "trending_refresh"
	JobPopularRefresh  = "popular_refresh"
)

const (
	JobRunStatusRunning   = "running"
	JobRunStatusCompleted = "completed"
	JobRunStatusFailed    = "failed"
)

type JobRun struct {
	bun.BaseModel `bun:"table:job_runs,alias:jr"`

	ID         int        `bun:",pk,nullzero" json:"id"`
	RunID      string     `json:"run_id"`
	Job        string     `json:"job"`
	Status     string     `json:"status"`
	Error      *string    `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Duration is zero while the run is still going.
func (r *JobRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
