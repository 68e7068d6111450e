// Package testutils provides test-only API endpoints.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/labstack/echo/v4"
	"github.com/moviemate/moviemate/pkg/cache"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{db: db, cacheService: cache.NewService(db)}

	test := e.Group("/test")
	test.DELETE("/cache", h.flushCache)
	test.DELETE("/jobs", h.deleteAllJobRuns)
}
