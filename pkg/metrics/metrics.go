package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviemate_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Validation failures are counted per violation, so a request with three
	// problems adds three.
	QueryViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviemate_query_violations_total",
			Help: "Total number of query violations by route, field and kind",
		},
		[]string{"route", "field", "kind"},
	)

	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviemate_tmdb_requests_total",
			Help: "Total number of TMDB requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviemate_tmdb_request_duration_seconds",
			Help:    "Duration of TMDB requests in seconds, including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moviemate_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviemate_cache_lookups_total",
			Help: "Total number of TMDB response cache lookups by result",
		},
		[]string{"result"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviemate_cache_evictions_total",
			Help: "Total number of cached responses removed by reason",
		},
		[]string{"reason"},
	)

	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviemate_job_runs_total",
			Help: "Total number of background job runs by job and status",
		},
		[]string{"job", "status"},
	)
)

const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// RegisterRoutes exposes the default registry at /metrics.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Middleware records the duration of every request under its route template,
// so /movies/:id is one series no matter how many ids are requested.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				// Render now so the status below is the one the client sees.
				c.Error(err)
			}

			status := c.Response().Status
			HTTPRequestDuration.
				WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
