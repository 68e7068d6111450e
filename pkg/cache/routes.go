package cache

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cacheService *Service) {
	h := &handler{cacheService: cacheService}

	e.GET("/cache/stats", h.stats)
}
