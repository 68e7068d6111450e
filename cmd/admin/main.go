package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/moviemate/moviemate/pkg/cache"
	"github.com/moviemate/moviemate/pkg/config"
	"github.com/moviemate/moviemate/pkg/database"
	"github.com/moviemate/moviemate/pkg/jobs"
	"github.com/moviemate/moviemate/pkg/migrations"
	"github.com/moviemate/moviemate/pkg/models"
	"github.com/moviemate/moviemate/pkg/movies"
	"github.com/moviemate/moviemate/pkg/tmdb"
	"github.com/moviemate/moviemate/pkg/worker"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	os.Exit(run(os.Args))
}

// run executes the CLI and returns the process exit code. It returns instead of
// exiting so the database is closed first.
func run(args []string) int {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Error("config error")
		return 1
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Error("database error")
		return 1
	}
	defer db.Close()

	app := &cli.App{
		Name:  "admin",
		Usage: "maintenance commands for the moviemate database and TMDB cache",
		Commands: []*cli.Command{
			{
				Name:        "db",
				Usage:       "manage migrations",
				Subcommands: migrationCommands(db),
			},
			{
				Name:        "cache",
				Usage:       "inspect and clear cached TMDB responses",
				Subcommands: cacheCommands(cfg, db),
			},
			{
				Name:        "jobs",
				Usage:       "inspect background job runs",
				Subcommands: jobCommands(db),
			},
			{
				Name:      "run-job",
				Usage:     "run a background job once",
				ArgsUsage: strings.Join([]string{models.JobCachePrune, models.JobTrendingRefresh, models.JobPopularRefresh}, "|"),
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("expected exactly one job name")
					}
					client := tmdb.New(tmdb.OptionsFromConfig(cfg))
					movieService := movies.NewService(client, cache.NewService(db), cfg.CacheTTL)
					return worker.New(cfg, db, movieService).RunJob(c.Args().First())
				},
			},
		},
	}
	if err := app.Run(args); err != nil {
		log.Err(err).Error("app run error")
		return 1
	}
	return 0
}

func migrationCommands(db *bun.DB) []*cli.Command {
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	return []*cli.Command{
		{
			Name:  "init",
			Usage: "create migration tables",
			Action: func(c *cli.Context) error {
				return migrator.Init(c.Context)
			},
		},
		{
			Name:  "migrate",
			Usage: "migrate database",
			Action: func(c *cli.Context) error {
				group, err := migrations.BringUpToDate(c.Context, db)
				if err != nil {
					return err
				}
				if group.ID == 0 {
					fmt.Printf("There are no new migrations to run\n")
					return nil
				}
				fmt.Printf("Migrated to %s\n", group)
				return nil
			},
		},
		{
			Name:  "rollback",
			Usage: "rollback the last migration group",
			Action: func(c *cli.Context) error {
				group, err := migrator.Rollback(c.Context)
				if err != nil {
					return err
				}
				if group.ID == 0 {
					fmt.Printf("There are no groups to roll back\n")
					return nil
				}
				fmt.Printf("Rolled back %s\n", group)
				return nil
			},
		},
		{
			Name:  "create",
			Usage: "create Go migration",
			Action: func(c *cli.Context) error {
				name := strings.Join(c.Args().Slice(), "_")
				mf, err := migrator.CreateGoMigration(c.Context, name, migrate.WithGoTemplate(migrationTemplate))
				if err != nil {
					return err
				}
				fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
				return nil
			},
		},
		{
			Name:  "status",
			Usage: "print migrations status",
			Action: func(c *cli.Context) error {
				ms, err := migrator.MigrationsWithStatus(c.Context)
				if err != nil {
					return err
				}
				fmt.Printf("Migrations: %s\n", ms)
				fmt.Printf("Unapplied migrations: %s\n", ms.Unapplied())
				fmt.Printf("Last migration group: %s\n", ms.LastGroup())
				return nil
			},
		},
	}
}

func cacheCommands(cfg *config.Config, db *bun.DB) []*cli.Command {
	cacheService := cache.NewService(db)

	return []*cli.Command{
		{
			Name:  "stats",
			Usage: "print cache entry counts",
			Action: func(c *cli.Context) error {
				stats, err := cacheService.Stats(c.Context)
				if err != nil {
					return err
				}
				fmt.Printf("Entries: %d (expired: %d, max: %d)\n", stats.Entries, stats.Expired, cfg.CacheMaxEntries)
				fmt.Printf("Hits: %d\n", stats.Hits)
				return nil
			},
		},
		{
			Name:  "flush",
			Usage: "delete every cached response",
			Action: func(c *cli.Context) error {
				n, err := cacheService.Flush(c.Context)
				if err != nil {
					return err
				}
				fmt.Printf("Deleted %d cached responses\n", n)
				return nil
			},
		},
	}
}

func jobCommands(db *bun.DB) []*cli.Command {
	jobService := jobs.NewService(db)

	return []*cli.Command{
		{
			Name:  "runs",
			Usage: "print the most recent job runs",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Value: 10, Usage: "number of runs to print"},
				&cli.StringFlag{Name: "job", Usage: "only print runs of this job"},
			},
			Action: func(c *cli.Context) error {
				opts := jobs.ListRunsOptions{Limit: pointerutil.Int(c.Int("limit"))}
				if job := c.String("job"); job != "" {
					opts.Job = pointerutil.String(job)
				}
				runs, err := jobService.ListRuns(c.Context, opts)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Printf("No job runs recorded\n")
					return nil
				}
				for _, run := range runs {
					line := fmt.Sprintf("%d\t%s\t%s\t%s\t%s", run.ID, run.Job, run.Status, run.StartedAt.Format(time.RFC3339), run.Duration())
					if run.Error != nil {
						line += "\t" + *run.Error
					}
					fmt.Println(line)
				}
				return nil
			},
		},
	}
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
