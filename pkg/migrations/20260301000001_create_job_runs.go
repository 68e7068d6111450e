package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE job_runs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL,
				job TEXT NOT NULL,
				status TEXT NOT NULL,
				error TEXT,
				started_at TIMESTAMPTZ NOT NULL,
				finished_at TIMESTAMPTZ
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE INDEX ix_job_runs_job_started_at ON job_runs(job, started_at)`)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP TABLE IF EXISTS job_runs`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
