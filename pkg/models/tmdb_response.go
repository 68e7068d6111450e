package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TMDBResponse is a cached TMDB body. Key is the endpoint plus the sorted,
// encoded parameters, never the API key.
type TMDBResponse struct {
	bun.BaseModel `bun:"table:tmdb_responses,alias:tr"`

	Key       string    `bun:",pk" json:"key"`
	Endpoint  string    `bun:",nullzero" json:"endpoint"`
	Body      string    `json:"-"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
	LastHitAt time.Time `json:"last_hit_at"`
	Hits      int       `json:"hits"`
}

// Expired reports whether the row's TTL has run out at now.
func (r *TMDBResponse) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
