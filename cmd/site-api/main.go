package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/eline/driftline/internal/api"
	"github.com/eline/driftline/internal/config"
	"github.com/eline/driftline/internal/core"
	"github.com/eline/driftline/internal/db"
	"github.com/eline/driftline/internal/logging"
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger("site-api", cfg.LogLevel)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	db.RegisterPoolMetrics(pool)

	srv := api.NewServer(logger, pool, cfg)

	go sweepStates(ctx, core.NewStateService(pool), logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting site API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	srv.Close()
}

// sweepStates periodically purges used and long-expired state tokens.
func sweepStates(ctx context.Context, states *core.StateService, logger zerolog.Logger) {
	ticker := time.NewTicker(core.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, sweepCancel := context.WithTimeout(ctx, 30*time.Second)
			deleted, err := states.Sweep(sweepCtx)
			sweepCancel()
			if err != nil {
				logger.Error().Err(err).Msg("state token sweep failed")
				continue
			}
			if deleted > 0 {
				logger.Debug().Int64("deleted", deleted).Msg("swept state tokens")
			}
		}
	}
}
