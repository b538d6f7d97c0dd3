// Package main is the entry point for the contest board server.
//
// The server publishes the trading contest leaderboard and trader profiles,
// serves candles and indicator overlays, proxies the economic calendar, and
// hosts interactive chart drawing sessions over WebSocket. Background jobs
// keep the local databases healthy and ship backups to object storage.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contestboard/arena/internal/config"
	"github.com/contestboard/arena/internal/di"
	"github.com/contestboard/arena/internal/server"
	"github.com/contestboard/arena/pkg/logger"
)

// main orchestrates the startup sequence:
// 1. Loads configuration from environment variables (.env supported)
// 2. Initializes logging
// 3. Wires all dependencies via the DI container
// 4. Starts the HTTP server and the job scheduler
// 5. Waits for a shutdown signal and shuts down gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.DevMode,
		Service: "arena",
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("version", server.Version).Msg("Starting arena")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, _, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	// Closing flushes WAL checkpoints of the local databases
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close databases")
		}
	}()

	srv := server.New(server.Config{
		Log:     log,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
		DataDir: cfg.DataDir,
		Databases: map[string]server.Pinger{
			"cache":   container.CacheDB.Conn(),
			"contest": container.ContestStore,
		},
		Files: container.LocalDatabases(),
		Jobs:  container.Scheduler,
		Handlers: []server.RouteRegistrar{
			container.LeaderboardHandler,
			container.ChartsHandler,
			container.CalendarHandler,
		},
		Streams: []server.RouteRegistrar{
			container.SessionHandler,
		},
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	container.Scheduler.Start()

	// Prime the calendar so the first request does not wait on upstream
	go func() {
		if err := container.Scheduler.RunNow(container.CalendarService); err != nil {
			log.Warn().Err(err).Msg("Initial calendar refresh failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	// Waits for running jobs to finish
	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
