package errcodes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/moviemate/moviemate/pkg/discover"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHandler().Handle(err, c)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	payload, ok := body["error"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return rec.Code, payload
}

func TestHandle(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"custom error", NotFound("Movie"), http.StatusNotFound, "not_found", "Movie not found."},
		{"wrapped custom error", errors.WithStack(ValidationError(`"id" must be at least 1`)), http.StatusUnprocessableEntity, "validation_error", `"id" must be at least 1`},
		{"echo error", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed"},
		{"generic error", errors.New("boom"), http.StatusInternalServerError, "internal_server_error", "Internal Server Error"},
		{"upstream", UpstreamFailure("TMDB request failed: Invalid API key"), http.StatusBadGateway, "upstream_error", "TMDB request failed: Invalid API key"},
		{"unavailable", UpstreamUnavailable(), http.StatusServiceUnavailable, "upstream_unavailable", "The movie database is temporarily unavailable."},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			status, payload := handle(t, tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, payload["code"])
			assert.Equal(t, tc.message, payload["message"])
			assert.EqualValues(t, tc.status, payload["status_code"])
			assert.NotContains(t, payload, "violations")
		})
	}
}

func TestHandle_Violations(t *testing.T) {
	t.Parallel()

	failure := &discover.ValidationFailure{Violations: []discover.Violation{
		{Field: "year", Kind: discover.RangeViolation, Message: `"year" must be between 1900 and 2030`, Value: "1800"},
		{Field: "max_rating", Kind: discover.CrossFieldViolation, Message: "conflict", Value: "6", RelatedField: "min_rating", RelatedValue: "8"},
	}}

	for name, err := range map[string]error{
		"converted": ValidationFailed(failure),
		"raw":       errors.WithStack(failure),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			status, payload := handle(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.Equal(t, "validation_failed", payload["code"])

			violations, ok := payload["violations"].([]interface{})
			require.True(t, ok)
			require.Len(t, violations, 2)
			cross := violations[1].(map[string]interface{})
			assert.Equal(t, "cross_field_violation", cross["kind"])
			assert.Equal(t, "min_rating", cross["related_field"])
			first := violations[0].(map[string]interface{})
			assert.NotContains(t, first, "related_field")
		})
	}
}

func TestError_IsAndAs(t *testing.T) {
	t.Parallel()

	err := errors.WithStack(ValidationFailed(&discover.ValidationFailure{Violations: []discover.Violation{{Field: "page"}}}))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Len(t, e.Violations, 1)
	assert.True(t, errors.Is(err, &Error{HTTPCode: http.StatusUnprocessableEntity, Message: "Query validation failed.", Code: "validation_failed"}))
	assert.False(t, errors.Is(err, NotFound("Movie")))
}
