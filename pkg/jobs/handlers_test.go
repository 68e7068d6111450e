package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/moviemate/moviemate/pkg/binder"
	"github.com/moviemate/moviemate/pkg/errcodes"
	"github.com/moviemate/moviemate/pkg/models"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_List(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, job := range []string{models.JobCachePrune, models.JobTrendingRefresh} {
		run, err := svc.StartRun(ctx, job, job+"-run")
		require.NoError(t, err)
		require.NoError(t, svc.FinishRun(ctx, run, nil))
	}

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	RegisterRoutesWithGroup(e.Group("/jobs"), db)

	req := httptest.NewRequest(http.MethodGet, "/jobs/runs?job=cache_prune", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Runs  []*models.JobRun `json:"runs"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, models.JobCachePrune, resp.Runs[0].Job)

	req = httptest.NewRequest(http.MethodGet, "/jobs/runs?job=scan", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/jobs/runs/999", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
