package errcodes

import (
	"net/http"

	"github.com/moviemate/moviemate/pkg/discover"
)

type Error struct {
	HTTPCode   int
	Message    string
	Code       string
	Violations []discover.Violation
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	te.Violations = err.Violations
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  resource + " not found.",
		Code:     "not_found",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		HTTPCode: http.StatusUnsupportedMediaType,
		Message:  "Unsupported Media Type",
		Code:     "unsupported_media_type",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_type_error",
	}
}

func ValidationError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_error",
	}
}

// ValidationFailed reports every violation found in a movie query at once so
// the client can fix them in a single round trip.
func ValidationFailed(failure *discover.ValidationFailure) error {
	return &Error{
		HTTPCode:   http.StatusUnprocessableEntity,
		Message:    "Query validation failed.",
		Code:       "validation_failed",
		Violations: failure.Violations,
	}
}

// UpstreamFailure means TMDB answered with an error, timed out, or couldn't be
// reached.
func UpstreamFailure(msg string) error {
	return &Error{
		HTTPCode: http.StatusBadGateway,
		Message:  msg,
		Code:     "upstream_error",
	}
}

// UpstreamUnavailable means calls to TMDB are currently short-circuited.
func UpstreamUnavailable() error {
	return &Error{
		HTTPCode: http.StatusServiceUnavailable,
		Message:  "The movie database is temporarily unavailable.",
		Code:     "upstream_unavailable",
	}
}

func UpstreamMisconfigured() error {
	return &Error{
		HTTPCode: http.StatusInternalServerError,
		Message:  "TMDB API key not configured.",
		Code:     "upstream_misconfigured",
	}
}
