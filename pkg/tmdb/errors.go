package tmdb

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMissingAPIKey = errors.New("TMDB API key not configured")
	ErrUnavailable   = errors.New("TMDB unavailable")

	// errRateLimited marks calls that gave up waiting on the local rate
	// limiter and never reached TMDB.
	errRateLimited = errors.New("rate limit wait aborted")
)

// UpstreamError is any failed call to TMDB. StatusCode is zero when no
// response came back.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error never includes the request URL, which carries the API key.
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tmdb %s: %s (status %d)", e.Endpoint, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("tmdb %s: %s", e.Endpoint, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NotFound reports whether TMDB answered 404.
func (e *UpstreamError) NotFound() bool {
	return e.StatusCode == 404
}
