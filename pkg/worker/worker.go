package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/moviemate/moviemate/pkg/cache"
	"github.com/moviemate/moviemate/pkg/config"
	"github.com/moviemate/moviemate/pkg/jobs"
	"github.com/moviemate/moviemate/pkg/metrics"
	"github.com/moviemate/moviemate/pkg/models"
	"github.com/moviemate/moviemate/pkg/movies"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// task is one periodic job.
type task struct {
	job      string
	interval time.Duration
}

type Worker struct {
	config *config.Config
	log    logger.Logger

	processFuncs map[string]func(ctx context.Context) error
	tasks        []task

	cacheService *cache.Service
	jobService   *jobs.Service
	movieService *movies.Service

	shutdown chan struct{}
	done     chan struct{}
}

func New(cfg *config.Config, db *bun.DB, movieService *movies.Service) *Worker {
	w := &Worker{
		config: cfg,
		log:    logger.New(),

		cacheService: cache.NewService(db),
		jobService:   jobs.NewService(db),
		movieService: movieService,

		shutdown: make(chan struct{}),
	}

	w.processFuncs = map[string]func(ctx context.Context) error{
		models.JobCachePrune:      w.ProcessCachePrune,
		models.JobTrendingRefresh: w.ProcessTrendingRefresh,
		models.JobPopularRefresh:  w.ProcessPopularRefresh,
	}

	for _, t := range []task{
		{models.JobCachePrune, cfg.CachePruneInterval},
		{models.JobTrendingRefresh, cfg.TrendingRefreshInterval},
		{models.JobPopularRefresh, cfg.PopularRefreshInterval},
	} {
		// A zero interval turns the job off.
		if t.interval > 0 {
			w.tasks = append(w.tasks, t)
		}
	}
	w.done = make(chan struct{}, len(w.tasks))

	return w
}

func (w *Worker) Start() {
	for _, t := range w.tasks {
		go w.schedule(t)
	}
}

func (w *Worker) schedule(t task) {
	timer := time.NewTimer(t.interval)

	for {
		select {
		case <-w.shutdown:
			timer.Stop()
			w.done <- struct{}{}
			return
		case <-timer.C:
			// Errors are already logged and recorded on the run.
			_ = w.RunJob(t.job)
			timer.Reset(t.interval)
		}
	}
}

// RunJob runs job once, recording it in job_runs.
func (w *Worker) RunJob(job string) error {
	fn, ok := w.processFuncs[job]
	if !ok {
		return errors.Errorf("unknown job %q", job)
	}

	// Prep the context to be passed down to the process function.
	id, err := uuid.NewRandom()
	if err != nil {
		w.log.Err(err).Error("new uuid error")
		return errors.WithStack(err)
	}
	log := w.log.ID(id.String()).Root(logger.Data{"job": job})
	ctx := log.WithContext(context.Background())

	run, err := w.jobService.StartRun(ctx, job, id.String())
	if err != nil {
		log.Err(err).Error("start run error")
		return errors.WithStack(err)
	}

	log.Info("job started")
	runErr := fn(ctx)
	if runErr != nil {
		log.Err(runErr).Error("process error")
		metrics.JobRuns.WithLabelValues(job, models.JobRunStatusFailed).Inc()
	} else {
		metrics.JobRuns.WithLabelValues(job, models.JobRunStatusCompleted).Inc()
	}

	if err := w.jobService.FinishRun(ctx, run, runErr); err != nil {
		log.Err(err).Error("finish run error")
		return errors.WithStack(err)
	}
	log.Info("job finished", logger.Data{"duration": run.Duration().String()})

	return runErr
}

func (w *Worker) Shutdown() {
	close(w.shutdown)

	for range w.tasks {
		<-w.done
	}
}
