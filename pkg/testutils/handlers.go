package testutils

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/moviemate/moviemate/pkg/cache"
	"github.com/moviemate/moviemate/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db           *bun.DB
	cacheService *cache.Service
}

type deletedResponse struct {
	Deleted int `json:"deleted"`
}

// flushCache drops every cached TMDB response.
// DELETE /test/cache.
func (h *handler) flushCache(c echo.Context) error {
	deleted, err := h.cacheService.Flush(c.Request().Context())
	if err != nil {
		return errors.Wrap(err, "failed to flush cache")
	}

	return c.JSON(http.StatusOK, deletedResponse{Deleted: deleted})
}

// deleteAllJobRuns clears the job run history.
// DELETE /test/jobs.
func (h *handler) deleteAllJobRuns(c echo.Context) error {
	result, err := h.db.NewDelete().
		Model((*models.JobRun)(nil)).
		Where("1=1").
		Exec(c.Request().Context())
	if err != nil {
		return errors.Wrap(err, "failed to delete job runs")
	}

	deleted, _ := result.RowsAffected()

	return c.JSON(http.StatusOK, deletedResponse{Deleted: int(deleted)})
}
