package movies

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/moviemate/moviemate/pkg/discover"
	"github.com/moviemate/moviemate/pkg/errcodes"
	"github.com/moviemate/moviemate/pkg/metrics"
	"github.com/moviemate/moviemate/pkg/tmdb"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

type handler struct {
	movieService *Service
}

func (h *handler) discover(c echo.Context) error {
	req, err := discover.ValidateFilter(queryParams(c))
	if err != nil {
		return rejected(c, err)
	}

	body, err := h.movieService.Discover(c.Request().Context(), req)
	return respond(c, body, err, "")
}

func (h *handler) search(c echo.Context) error {
	req, err := discover.ValidateSearch(queryParams(c))
	if err != nil {
		return rejected(c, err)
	}

	body, err := h.movieService.Search(c.Request().Context(), req)
	return respond(c, body, err, "")
}

func (h *handler) genre(c echo.Context) error {
	req, err := discover.ValidateGenre(queryParams(c))
	if err != nil {
		return rejected(c, err)
	}

	body, err := h.movieService.Genre(c.Request().Context(), req)
	return respond(c, body, err, "")
}

// trending serves both /movies/trending?time_window=day and
// /movies/trending/day. In the path form the path's window wins over any
// time_window in the query.
func (h *handler) trending(c echo.Context) error {
	raw := queryParams(c)
	if window := c.Param(discover.FieldTimeWindow); window != "" {
		raw.Set(discover.FieldTimeWindow, window)
	}

	req, err := discover.ValidateTrending(raw)
	if err != nil {
		return rejected(c, err)
	}

	body, err := h.movieService.Trending(c.Request().Context(), req)
	return respond(c, body, err, "")
}

// list returns a handler for one of the curated lists.
func (h *handler) list(endpoint string) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := discover.ValidateList(queryParams(c))
		if err != nil {
			return rejected(c, err)
		}

		body, err := h.movieService.List(c.Request().Context(), endpoint, req)
		return respond(c, body, err, "")
	}
}

func (h *handler) retrieve(c echo.Context) error {
	params := MovieDetailsPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	body, err := h.movieService.MovieDetails(c.Request().Context(), params)
	return respond(c, body, err, "Movie")
}

func (h *handler) genres(c echo.Context) error {
	params := GenresPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	body, err := h.movieService.Genres(c.Request().Context(), params)
	return respond(c, body, err, "")
}

// queryParams returns a copy of the request's query. Keys no validator reads,
// like a cache buster, are ignored.
func queryParams(c echo.Context) url.Values {
	raw := url.Values{}
	for k, v := range c.QueryParams() {
		raw[k] = append([]string(nil), v...)
	}
	return raw
}

// rejected turns a validation failure into a 422 carrying every violation.
func rejected(c echo.Context, err error) error {
	var failure *discover.ValidationFailure
	if !errors.As(err, &failure) {
		return errors.WithStack(err)
	}

	for _, v := range failure.Violations {
		metrics.QueryViolations.WithLabelValues(c.Path(), v.Field, string(v.Kind)).Inc()
	}
	logger.FromContext(c.Request().Context()).Info("query rejected", logger.Data{"violations": len(failure.Violations)})

	return errcodes.ValidationFailed(failure)
}

// respond writes a TMDB body straight through. resource names what a TMDB 404
// means for this route; routes without one treat 404 as an upstream failure.
func respond(c echo.Context, body json.RawMessage, err error, resource string) error {
	if err != nil {
		return upstreamError(c, err, resource)
	}
	return errors.WithStack(c.JSONBlob(http.StatusOK, body))
}

func upstreamError(c echo.Context, err error, resource string) error {
	log := logger.FromContext(c.Request().Context())

	if errors.Is(err, tmdb.ErrMissingAPIKey) {
		log.Err(err).Error("tmdb misconfigured")
		return errcodes.UpstreamMisconfigured()
	}
	if errors.Is(err, tmdb.ErrUnavailable) {
		log.Warn("tmdb unavailable")
		return errcodes.UpstreamUnavailable()
	}

	var ue *tmdb.UpstreamError
	if errors.As(err, &ue) {
		if ue.NotFound() && resource != "" {
			return errcodes.NotFound(resource)
		}
		log.Err(err).Warn("tmdb error", logger.Data{"endpoint": ue.Endpoint, "status": ue.StatusCode})
		return errcodes.UpstreamFailure("TMDB request failed: " + ue.Message)
	}

	return errors.WithStack(err)
}
