package jobs

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/moviemate/moviemate/pkg/errcodes"
	"github.com/moviemate/moviemate/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	jobService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Job run")
	}

	run, err := h.jobService.RetrieveRun(ctx, RetrieveRunOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, run))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListRunsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	runs, total, err := h.jobService.ListRunsWithTotal(ctx, ListRunsOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		Job:      params.Job,
		Statuses: params.Status,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Runs  []*models.JobRun `json:"runs"`
		Total int              `json:"total"`
	}{runs, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
