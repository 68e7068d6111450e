package worker

import (
	"context"
	"time"

	"github.com/moviemate/moviemate/pkg/discover"
	"github.com/moviemate/moviemate/pkg/metrics"
	"github.com/moviemate/moviemate/pkg/tmdb"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// Finished runs older than this are dropped by the cache prune job.
const runRetention = 7 * 24 * time.Hour

// ProcessCachePrune drops expired responses, then trims the cache down to
// CacheMaxEntries.
func (w *Worker) ProcessCachePrune(ctx context.Context) error {
	log := logger.FromContext(ctx)

	expired, err := w.cacheService.Prune(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.CacheEvictions.WithLabelValues("expired").Add(float64(expired))

	evicted, err := w.cacheService.Evict(ctx, w.config.CacheMaxEntries)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.CacheEvictions.WithLabelValues("capacity").Add(float64(evicted))

	runs, err := w.jobService.PruneRuns(ctx, time.Now().Add(-runRetention))
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("cache pruned", logger.Data{"expired": expired, "evicted": evicted, "runs_removed": runs})
	return nil
}

// ProcessTrendingRefresh reloads the first page of both trending windows.
func (w *Worker) ProcessTrendingRefresh(ctx context.Context) error {
	for _, window := range discover.TimeWindows() {
		req := &discover.TrendingRequest{
			Pagination: discover.Pagination{Page: discover.DefaultPage},
			TimeWindow: window,
		}
		if err := w.movieService.Refresh(ctx, tmdb.TrendingEndpoint(window), req.Translate()); err != nil {
			return errors.Wrapf(err, "refresh trending %s", window)
		}
	}
	return nil
}

// ProcessPopularRefresh reloads the first page of each curated list.
func (w *Worker) ProcessPopularRefresh(ctx context.Context) error {
	req := &discover.ListRequest{Pagination: discover.Pagination{Page: discover.DefaultPage}}
	for _, endpoint := range []string{tmdb.EndpointPopular, tmdb.EndpointNowPlaying, tmdb.EndpointTopRated} {
		if err := w.movieService.Refresh(ctx, endpoint, req.Translate()); err != nil {
			return errors.Wrapf(err, "refresh %s", endpoint)
		}
	}
	return nil
}
