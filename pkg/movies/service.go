package movies

import (
	"context"
	"strings"
	"time"

	"github.com/moviemate/moviemate/pkg/cache"
	"github.com/moviemate/moviemate/pkg/discover"
	"github.com/moviemate/moviemate/pkg/metrics"
	"github.com/moviemate/moviemate/pkg/tmdb"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

// Fetcher is the slice of *tmdb.Client the service needs.
type Fetcher interface {
	Get(ctx context.Context, endpoint string, params discover.Params) (json.RawMessage, error)
}

type Service struct {
	fetcher Fetcher
	cache   *cache.Service
	ttl     time.Duration
}

// NewService returns a Service that reads through cacheService. A nil
// cacheService or a zero ttl disables caching.
func NewService(fetcher Fetcher, cacheService *cache.Service, ttl time.Duration) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cacheService,
		ttl:     ttl,
	}
}

// Fetch returns the TMDB response for endpoint and params, from the cache when
// a fresh copy exists. Cache failures are logged and otherwise ignored.
func (svc *Service) Fetch(ctx context.Context, endpoint string, params discover.Params) (json.RawMessage, error) {
	log := logger.FromContext(ctx)
	caching := svc.cache != nil && svc.ttl > 0
	key := cache.Key(endpoint, params)

	if caching {
		body, ok, err := svc.cache.Get(ctx, key)
		if err != nil {
			log.Err(err).Warn("cache lookup error", logger.Data{"key": key})
		} else if ok {
			metrics.CacheLookups.WithLabelValues(metrics.CacheHit).Inc()
			return body, nil
		}
		metrics.CacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
	}

	body, err := svc.fetcher.Get(ctx, endpoint, params)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if caching {
		if err := svc.cache.Set(ctx, key, endpoint, body, svc.ttl); err != nil {
			log.Err(err).Warn("cache store error", logger.Data{"key": key})
		}
	}

	return body, nil
}

// Refresh fetches endpoint from TMDB and overwrites any cached copy, fresh or
// not.
func (svc *Service) Refresh(ctx context.Context, endpoint string, params discover.Params) error {
	body, err := svc.fetcher.Get(ctx, endpoint, params)
	if err != nil {
		return errors.WithStack(err)
	}
	if svc.cache == nil || svc.ttl <= 0 {
		return nil
	}
	return svc.cache.Set(ctx, cache.Key(endpoint, params), endpoint, body, svc.ttl)
}

// Discover runs a filtered discover query. TMDB's discover endpoint ignores
// free text, so a query switches the call over to search. ValidateFilter only
// lets filters search understands through alongside a query.
func (svc *Service) Discover(ctx context.Context, req *discover.FilterRequest) (json.RawMessage, error) {
	endpoint := tmdb.EndpointDiscover
	if req.Query != nil {
		endpoint = tmdb.EndpointSearch
	}
	return svc.Fetch(ctx, endpoint, req.Translate())
}

func (svc *Service) Search(ctx context.Context, req *discover.SearchRequest) (json.RawMessage, error) {
	return svc.Fetch(ctx, tmdb.EndpointSearch, req.Translate())
}

func (svc *Service) Genre(ctx context.Context, req *discover.GenreRequest) (json.RawMessage, error) {
	return svc.Fetch(ctx, tmdb.EndpointDiscover, req.Translate())
}

func (svc *Service) Trending(ctx context.Context, req *discover.TrendingRequest) (json.RawMessage, error) {
	return svc.Fetch(ctx, tmdb.TrendingEndpoint(req.TimeWindow), req.Translate())
}

// List pages through one of the curated lists, e.g. tmdb.EndpointPopular.
func (svc *Service) List(ctx context.Context, endpoint string, req *discover.ListRequest) (json.RawMessage, error) {
	return svc.Fetch(ctx, endpoint, req.Translate())
}

func (svc *Service) MovieDetails(ctx context.Context, payload MovieDetailsPayload) (json.RawMessage, error) {
	params := discover.Params{}
	if payload.AppendToResponse != "" {
		params[paramAppendToResponse] = normalizeList(payload.AppendToResponse)
	}
	if payload.Language != "" {
		params[paramLanguage] = payload.Language
	}
	return svc.Fetch(ctx, tmdb.MovieEndpoint(payload.ID), params)
}

func (svc *Service) Genres(ctx context.Context, payload GenresPayload) (json.RawMessage, error) {
	params := discover.Params{}
	if payload.Language != "" {
		params[paramLanguage] = payload.Language
	}
	return svc.Fetch(ctx, tmdb.EndpointGenres, params)
}

const (
	paramAppendToResponse = "append_to_response"
	paramLanguage         = "language"
)

// normalizeList trims each entry so "videos, credits" and "videos,credits"
// share a cache key.
func normalizeList(s string) string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

