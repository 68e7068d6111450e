package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE tmdb_responses (
				key TEXT PRIMARY KEY,
				endpoint TEXT NOT NULL,
				body TEXT NOT NULL,
				cached_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				expires_at TIMESTAMPTZ NOT NULL,
				last_hit_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				hits INTEGER NOT NULL DEFAULT 0
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}

		// Pruning deletes by expiry, eviction deletes the least recently hit.
		_, err = db.Exec(`CREATE INDEX ix_tmdb_responses_expires_at ON tmdb_responses(expires_at)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_tmdb_responses_last_hit_at ON tmdb_responses(last_hit_at)`)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP TABLE IF EXISTS tmdb_responses`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
