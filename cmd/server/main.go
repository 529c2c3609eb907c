// Package main is the entry point for the fraudwatch scoring API.
// It loads the persisted model artifact into a swappable snapshot and serves
// scoring, system status, and demo endpoints over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fraudwatch/fraudwatch/internal/config"
	"github.com/fraudwatch/fraudwatch/internal/database"
	"github.com/fraudwatch/fraudwatch/internal/modules/detector"
	"github.com/fraudwatch/fraudwatch/internal/modules/events"
	"github.com/fraudwatch/fraudwatch/internal/modules/synth"
	"github.com/fraudwatch/fraudwatch/internal/server"
	"github.com/fraudwatch/fraudwatch/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting fraudwatch")

	// The fitted model is process-wide shared state. It lives behind a
	// snapshot so concurrent scoring requests read an immutable fit while
	// a future load swaps in a replacement atomically.
	snapshot := detector.NewSnapshot()
	if _, err := os.Stat(cfg.ModelPath); err == nil {
		model, err := detector.Load(cfg.ModelPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ModelPath).Msg("Failed to load model artifact")
		}
		snapshot.Store(model)
		log.Info().Str("path", cfg.ModelPath).Msg("Model artifact loaded")
	} else {
		log.Warn().Str("path", cfg.ModelPath).Msg("No model artifact found, scoring requests will be rejected until one is trained")
	}

	// Event store backing the stored-user scoring endpoint
	eventsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "events.db"),
		Profile: database.ProfileEvents,
		Name:    "events",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open events database")
	}
	defer eventsDB.Close()

	eventRepo, err := events.NewRepository(eventsDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize event repository")
	}

	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		DevMode:   cfg.DevMode,
		Snapshot:  snapshot,
		Generator: synth.NewGenerator(cfg.Seed),
		EventRepo: eventRepo,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Block until SIGINT or SIGTERM, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
