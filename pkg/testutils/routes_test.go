package testutils

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/moviemate/moviemate/pkg/cache"
	"github.com/moviemate/moviemate/pkg/jobs"
	"github.com/moviemate/moviemate/pkg/migrations"
	"github.com/moviemate/moviemate/pkg/models"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestFlushCache(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cacheService := cache.NewService(db)
	require.NoError(t, cacheService.Set(ctx, "a", "/movie/popular", json.RawMessage(`{}`), time.Hour))
	require.NoError(t, cacheService.Set(ctx, "b", "/movie/top_rated", json.RawMessage(`{}`), time.Hour))

	e := echo.New()
	RegisterRoutes(e, db)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/test/cache", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":2}`, rec.Body.String())

	stats, err := cacheService.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestDeleteAllJobRuns(t *testing.T) {
	db := newTestDB(t)
	_, err := jobs.NewService(db).StartRun(context.Background(), models.JobCachePrune, "run-1")
	require.NoError(t, err)

	e := echo.New()
	RegisterRoutes(e, db)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/test/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())
}
