package movies

import (
	"github.com/labstack/echo/v4"
	"github.com/moviemate/moviemate/pkg/tmdb"
)

// RegisterRoutesWithGroup registers movie routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, movieService *Service) {
	h := &handler{movieService: movieService}

	g.GET("/discover", h.discover)
	g.GET("/search", h.search)
	g.GET("/genre", h.genre)
	g.GET("/trending", h.trending)
	g.GET("/trending/:time_window", h.trending)
	g.GET("/popular", h.list(tmdb.EndpointPopular))
	g.GET("/now-playing", h.list(tmdb.EndpointNowPlaying))
	g.GET("/top-rated", h.list(tmdb.EndpointTopRated))
	g.GET("/:id", h.retrieve)
}

// RegisterGenreRoutes registers the genre list.
func RegisterGenreRoutes(e *echo.Echo, movieService *Service) {
	h := &handler{movieService: movieService}

	e.GET("/genres", h.genres)
}
