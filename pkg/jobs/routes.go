package jobs

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers job run routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	jobService := NewService(db)

	h := &handler{
		jobService: jobService,
	}

	g.GET("/runs", h.list)
	g.GET("/runs/:id", h.retrieve)
}
