package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/moviemate/moviemate/pkg/binder"
	"github.com/moviemate/moviemate/pkg/cache"
	"github.com/moviemate/moviemate/pkg/config"
	"github.com/moviemate/moviemate/pkg/errcodes"
	"github.com/moviemate/moviemate/pkg/jobs"
	"github.com/moviemate/moviemate/pkg/metrics"
	"github.com/moviemate/moviemate/pkg/movies"
	"github.com/moviemate/moviemate/pkg/testutils"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, movieService *movies.Service) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(metrics.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	metrics.RegisterRoutes(e)

	movies.RegisterRoutesWithGroup(e.Group("/movies"), movieService)
	movies.RegisterGenreRoutes(e, movieService)
	cache.RegisterRoutes(e, cache.NewService(db))
	jobs.RegisterRoutesWithGroup(e.Group("/jobs"), db)

	if cfg.Environment == config.EnvironmentTest {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
