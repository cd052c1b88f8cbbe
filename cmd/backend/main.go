package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"filedrive/internal/config"
	"filedrive/internal/db"
	"filedrive/internal/server"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "backend").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	dbConn, err := server.OpenDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer func() { _ = dbConn.Close() }()

	log.Info().Msg("running migrations")
	if err := db.RunMigrations(dbConn); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("migrations complete")

	var storage server.Storage
	switch cfg.Storage {
	case "disk":
		storage, err = server.NewDiskStorage(cfg.DiskRoot)
	default:
		storage, err = server.NewMinioStorage(cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage).Msg("storage init failed")
	}

	srv := server.New(cfg, log, dbConn, storage)

	// Start the HTTP server in a background goroutine so we can listen
	// for OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("version", cfg.Version).Msg("starting")
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		// Give the server 5 seconds to finish in-flight requests.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("shutdown error")
		}
		log.Info().Msg("shutdown complete")
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}
}
