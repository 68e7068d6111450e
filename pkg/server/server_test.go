package server

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/moviemate/moviemate/pkg/cache"
	"github.com/moviemate/moviemate/pkg/config"
	"github.com/moviemate/moviemate/pkg/migrations"
	"github.com/moviemate/moviemate/pkg/movies"
	"github.com/moviemate/moviemate/pkg/tmdb"
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

// setupTestServer wires the full stack against a fake TMDB.
func setupTestServer(t *testing.T) (http.Handler, *int32, *upstreamRequest) {
	t.Helper()

	var hits int32
	last := &upstreamRequest{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		last.set(r.URL.Path, r.URL.Query().Get("api_key"), r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":603,"title":"The Matrix"}]}`))
	}))
	t.Cleanup(upstream.Close)

	cfg := config.NewForTest()
	cfg.TMDBBaseURL = upstream.URL
	db := newTestDB(t)

	client := tmdb.New(tmdb.OptionsFromConfig(cfg))
	movieService := movies.NewService(client, cache.NewService(db), cfg.CacheTTL)

	srv, err := New(cfg, db, movieService)
	require.NoError(t, err)
	return srv.Handler, &hits, last
}

// upstreamRequest remembers the last request the fake TMDB saw.
type upstreamRequest struct {
	mu     sync.Mutex
	path   string
	apiKey string
	query  string
}

func (u *upstreamRequest) set(path, apiKey, query string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.path, u.apiKey, u.query = path, apiKey, query
}

func (u *upstreamRequest) get() (string, string, string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.path, u.apiKey, u.query
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	h, _, _ := setupTestServer(t)

	rec := serve(h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_DiscoverEndToEnd(t *testing.T) {
	h, hits, last := setupTestServer(t)

	rec := serve(h, http.MethodGet, "/movies/discover?genre=28,12&year=2023&min_rating=7.5&sort_by=vote_average.desc")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "The Matrix")

	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	path, apiKey, query := last.get()
	assert.Equal(t, "/discover/movie", path)
	assert.Equal(t, "test-api-key", apiKey)
	assert.Equal(t, "api_key=test-api-key&page=1&primary_release_year=2023&sort_by=vote_average.desc&vote_average.gte=7.5&with_genres=28%2C12", query)

	// Served from the cache the second time.
	rec = serve(h, http.MethodGet, "/movies/discover?sort_by=vote_average.desc&min_rating=7.5&year=2023&genre=28,12")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	rec = serve(h, http.MethodGet, "/cache/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":1,"expired":0,"hits":1}`, rec.Body.String())

	rec = serve(h, http.MethodDelete, "/test/cache")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RejectedQueryNeverReachesTMDB(t *testing.T) {
	h, hits, _ := setupTestServer(t)

	rec := serve(h, http.MethodGet, "/movies/discover?min_rating=8&max_rating=6")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error struct {
			Code       string `json:"code"`
			Violations []struct {
				Field string `json:"field"`
				Kind  string `json:"kind"`
			} `json:"violations"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Error.Code)
	require.Len(t, resp.Error.Violations, 1)
	assert.Equal(t, "cross_field_violation", resp.Error.Violations[0].Kind)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestServer_NotFound(t *testing.T) {
	h, _, _ := setupTestServer(t)

	rec := serve(h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_found"`)
}

func TestServer_Metrics(t *testing.T) {
	h, _, _ := setupTestServer(t)

	serve(h, http.MethodGet, "/movies/discover?year=1800")

	rec := serve(h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "moviemate_query_violations_total")
	assert.Contains(t, rec.Body.String(), "moviemate_http_request_duration_seconds")
}
