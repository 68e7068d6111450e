package jobs

import (
	"context"
	"database/sql"
	"time"

	"github.com/moviemate/moviemate/pkg/errcodes"
	"github.com/moviemate/moviemate/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveRunOptions struct {
	ID    *int
	RunID *string
}

type ListRunsOptions struct {
	Limit    *int
	Offset   *int
	Job      *string
	Statuses []string

	includeTotal bool
}

type Service struct {
	db  *bun.DB
	now func() time.Time
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// StartRun records that job has begun under runID.
func (svc *Service) StartRun(ctx context.Context, job, runID string) (*models.JobRun, error) {
	run := &models.JobRun{
		RunID:     runID,
		Job:       job,
		Status:    models.JobRunStatusRunning,
		StartedAt: svc.now(),
	}

	_, err := svc.db.
		NewInsert().
		Model(run).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return run, nil
}

// FinishRun marks run completed, or failed with runErr's message.
func (svc *Service) FinishRun(ctx context.Context, run *models.JobRun, runErr error) error {
	now := svc.now()
	run.FinishedAt = &now
	run.Status = models.JobRunStatusCompleted
	if runErr != nil {
		msg := runErr.Error()
		run.Status = models.JobRunStatusFailed
		run.Error = &msg
	}

	_, err := svc.db.
		NewUpdate().
		Model(run).
		Column("status", "error", "finished_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveRun(ctx context.Context, opts RetrieveRunOptions) (*models.JobRun, error) {
	run := &models.JobRun{}

	q := svc.db.
		NewSelect().
		Model(run)

	if opts.ID != nil {
		q = q.Where("jr.id = ?", *opts.ID)
	}
	if opts.RunID != nil {
		q = q.Where("jr.run_id = ?", *opts.RunID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Job run")
		}
		return nil, errors.WithStack(err)
	}

	return run, nil
}

func (svc *Service) ListRuns(ctx context.Context, opts ListRunsOptions) ([]*models.JobRun, error) {
	runs, _, err := svc.listRunsWithTotal(ctx, opts)
	return runs, errors.WithStack(err)
}

func (svc *Service) ListRunsWithTotal(ctx context.Context, opts ListRunsOptions) ([]*models.JobRun, int, error) {
	opts.includeTotal = true
	return svc.listRunsWithTotal(ctx, opts)
}

func (svc *Service) listRunsWithTotal(ctx context.Context, opts ListRunsOptions) ([]*models.JobRun, int, error) {
	runs := []*models.JobRun{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&runs).
		Order("jr.started_at DESC", "jr.id DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.Job != nil {
		q = q.Where("jr.job = ?", *opts.Job)
	}
	if opts.Statuses != nil {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, s := range opts.Statuses {
				sq = sq.WhereOr("jr.status = ?", s)
			}
			return sq
		})
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return runs, total, nil
}

// PruneRuns deletes finished runs that started before cutoff.
func (svc *Service) PruneRuns(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := svc.db.
		NewDelete().
		Model((*models.JobRun)(nil)).
		Where("started_at < ?", cutoff).
		Where("status != ?", models.JobRunStatusRunning).
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
