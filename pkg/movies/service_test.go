package movies

import (
	"context"
	"testing"
	"time"

	"github.com/moviemate/moviemate/pkg/cache"
	"github.com/moviemate/moviemate/pkg/discover"
	"github.com/moviemate/moviemate/pkg/tmdb"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_FetchWithoutCache(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{}
	svc := NewService(f, nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Fetch(ctx, tmdb.EndpointPopular, discover.Params{"page": 1})
		require.NoError(t, err)
	}
	assert.Len(t, f.Calls(), 2)
}

func TestService_Refresh(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{body: json.RawMessage(`{"v":1}`)}
	cacheService := cache.NewService(newHandlerTestDB(t))
	svc := NewService(f, cacheService, time.Minute)
	ctx := context.Background()
	params := discover.Params{"page": 1}

	body, err := svc.Fetch(ctx, tmdb.EndpointPopular, params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(body))

	f.mu.Lock()
	f.body = json.RawMessage(`{"v":2}`)
	f.mu.Unlock()

	// A fresh entry is still replaced.
	require.NoError(t, svc.Refresh(ctx, tmdb.EndpointPopular, params))

	body, err = svc.Fetch(ctx, tmdb.EndpointPopular, params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(body))
	assert.Len(t, f.Calls(), 2)
}

func TestService_Helpers(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{}
	svc := NewService(f, nil, 0)
	ctx := context.Background()

	_, err := svc.List(ctx, tmdb.EndpointPopular, &discover.ListRequest{Pagination: discover.Pagination{Page: 2}})
	require.NoError(t, err)
	_, err = svc.List(ctx, tmdb.EndpointNowPlaying, &discover.ListRequest{Pagination: discover.Pagination{Page: 1}})
	require.NoError(t, err)
	_, err = svc.List(ctx, tmdb.EndpointTopRated, &discover.ListRequest{Pagination: discover.Pagination{Page: 1}})
	require.NoError(t, err)
	_, err = svc.Trending(ctx, &discover.TrendingRequest{Pagination: discover.Pagination{Page: 1}, TimeWindow: discover.TimeWindowDay})
	require.NoError(t, err)
	_, err = svc.Genres(ctx, GenresPayload{})
	require.NoError(t, err)

	calls := f.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, fetchCall{tmdb.EndpointPopular, discover.Params{"page": 2}}, calls[0])
	assert.Equal(t, tmdb.EndpointNowPlaying, calls[1].endpoint)
	assert.Equal(t, tmdb.EndpointTopRated, calls[2].endpoint)
	assert.Equal(t, "/trending/movie/day", calls[3].endpoint)
	assert.Equal(t, fetchCall{tmdb.EndpointGenres, discover.Params{}}, calls[4])
}

func TestNormalizeList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "videos,credits", normalizeList(" videos , credits ,"))
	assert.Equal(t, "", normalizeList(""))
}
