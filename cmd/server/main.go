package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fincast/fincast/internal/config"
	"github.com/fincast/fincast/internal/database"
	"github.com/fincast/fincast/internal/modules/planning"
	"github.com/fincast/fincast/internal/modules/runs"
	"github.com/fincast/fincast/internal/modules/simulation"
	"github.com/fincast/fincast/internal/scheduler"
	"github.com/fincast/fincast/internal/server"
	"github.com/fincast/fincast/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting fincast")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := runs.InitSchema(db.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize schema")
	}

	// Core modules
	orch := simulation.NewOrchestrator(log)
	planner := planning.NewService(orch, log)
	runsRepo := runs.NewRepository(db.Conn(), log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	cleanup := runs.NewCleanupJob(runsRepo, cfg.RunRetentionDays, log)
	if err := sched.AddJob("@daily", cleanup); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cleanup job")
	}
	if err := sched.RunNow(cleanup); err != nil {
		log.Error().Err(err).Msg("Startup run-history cleanup failed")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		Cfg:     cfg,
		Orch:    orch,
		Planner: planner,
		Runs:    runsRepo,
		DevMode: cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
