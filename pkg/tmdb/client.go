package tmdb

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/moviemate/moviemate/pkg/config"
	"github.com/moviemate/moviemate/pkg/discover"
	"github.com/moviemate/moviemate/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	EndpointDiscover   = "/discover/movie"
	EndpointSearch     = "/search/movie"
	EndpointPopular    = "/movie/popular"
	EndpointNowPlaying = "/movie/now_playing"
	EndpointTopRated   = "/movie/top_rated"
	EndpointGenres     = "/genre/movie/list"
)

// TrendingEndpoint returns the trending list path for the window.
func TrendingEndpoint(w discover.TimeWindow) string {
	return "/trending/movie/" + w.String()
}

// MovieEndpoint returns the details path for a TMDB movie id.
func MovieEndpoint(id int) string {
	return "/movie/" + strconv.Itoa(id)
}

const (
	breakerName = "tmdb"
	maxBodySize = 10 << 20
)

var numericSegmentRE = regexp.MustCompile(`/\d+(/|$)`)

type Options struct {
	BaseURL string
	APIKey  string

	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	RateLimit float64
	RateBurst int

	BreakerFailures int
	BreakerTimeout  time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:         cfg.TMDBBaseURL,
		APIKey:          cfg.TMDBAPIKey,
		Timeout:         cfg.TMDBTimeout,
		RetryMax:        cfg.TMDBRetryMax,
		RetryWaitMin:    cfg.TMDBRetryWaitMin,
		RetryWaitMax:    cfg.TMDBRetryWaitMax,
		RateLimit:       cfg.TMDBRateLimit,
		RateBurst:       cfg.TMDBRateBurst,
		BreakerFailures: cfg.TMDBBreakerFailures,
		BreakerTimeout:  cfg.TMDBBreakerTimeout,
	}
}

// Client talks to the TMDB v3 API. It's safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string

	http    *retryablehttp.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
}

func New(opts Options) *Client {
	log := logger.New()

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.HTTPClient = &http.Client{Timeout: opts.Timeout}
	// Request URLs carry the API key, so the library's own logging stays off.
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst < 1 {
		burst = 1
	}

	failures := uint32(1)
	if opts.BreakerFailures > 1 {
		failures = uint32(opts.BreakerFailures)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", logger.Data{"breaker": name, "from": from.String(), "to": to.String()})
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		http:    retryClient,
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker,
	}
}

// Get calls endpoint with params plus the API key and returns the raw JSON
// body. Failures are *UpstreamError.
func (c *Client) Get(ctx context.Context, endpoint string, params discover.Params) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, errors.WithStack(ErrMissingAPIKey)
	}

	label := endpointLabel(endpoint)
	start := time.Now()
	defer func() {
		metrics.TMDBRequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	body, err := c.breaker.Execute(func() (json.RawMessage, error) {
		return c.do(ctx, endpoint, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.TMDBRequests.WithLabelValues(label, "rejected").Inc()
			return nil, &UpstreamError{Endpoint: endpoint, Message: "circuit breaker open", Err: ErrUnavailable}
		}
		metrics.TMDBRequests.WithLabelValues(label, "failure").Inc()
		return nil, err
	}

	metrics.TMDBRequests.WithLabelValues(label, "success").Inc()
	return body, nil
}

// BreakerState reports "closed", "half-open" or "open".
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func (c *Client) do(ctx context.Context, endpoint string, params discover.Params) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, Message: "rate limit wait cancelled", Err: fmt.Errorf("%w: %w", errRateLimited, err)}
	}

	values := params.Values()
	values.Set("api_key", c.apiKey)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		msg := "request failed"
		if isTimeout(err) {
			msg = "request timed out"
		}
		return nil, &UpstreamError{Endpoint: endpoint, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "reading response failed", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    statusMessage(body, resp.StatusCode),
		}
	}

	if !json.Valid(body) {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "response is not valid JSON"}
	}

	return json.RawMessage(body), nil
}

// statusMessage pulls TMDB's status_message out of an error body.
func statusMessage(body []byte, code int) string {
	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.StatusMessage != "" {
		return payload.StatusMessage
	}
	return http.StatusText(code)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// countsAsSuccess keeps client mistakes, cancellations and local rate limiting
// from tripping the breaker. Only TMDB being down or slow should.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, errRateLimited) {
		return true
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode >= 400 && ue.StatusCode < 500 && ue.StatusCode != http.StatusTooManyRequests
	}
	return false
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// endpointLabel collapses ids so /movie/603 and /movie/604 share a series.
func endpointLabel(endpoint string) string {
	return numericSegmentRE.ReplaceAllString(endpoint, "/:id$1")
}
