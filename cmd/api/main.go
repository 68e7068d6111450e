package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/moviemate/moviemate/pkg/cache"
	"github.com/moviemate/moviemate/pkg/config"
	"github.com/moviemate/moviemate/pkg/database"
	"github.com/moviemate/moviemate/pkg/migrations"
	"github.com/moviemate/moviemate/pkg/movies"
	"github.com/moviemate/moviemate/pkg/server"
	"github.com/moviemate/moviemate/pkg/tmdb"
	"github.com/moviemate/moviemate/pkg/version"
	"github.com/moviemate/moviemate/pkg/worker"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting moviemate", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	client := tmdb.New(tmdb.OptionsFromConfig(cfg))
	movieService := movies.NewService(client, cache.NewService(db), cfg.CacheTTL)

	wrkr := worker.New(cfg, db, movieService)

	srv, err := server.New(cfg, db, movieService)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		log.Info("server started", logger.Data{"addr": listener.Addr().String()})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	if cfg.WorkerEnabled {
		wrkr.Start()
		log.Info("worker started")
	}

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	if cfg.WorkerEnabled {
		wrkr.Shutdown()
		log.Info("worker shutdown")
	}

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
