package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nexa-tasks/nexa/internal/config"
	"github.com/nexa-tasks/nexa/internal/logger"
	"github.com/nexa-tasks/nexa/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	if os.Getenv("SANDBOX_JWT_SECRET") == "" {
		log.Warn().Msg("SANDBOX_JWT_SECRET not set, tokens will not survive a restart")
	}
	if cfg.Auth.AdminInviteToken == "" {
		log.Warn().Msg("SANDBOX_ADMIN_INVITE_TOKEN not set, admin signup is disabled")
	}

	// Create server
	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().Str("version", version).Str("database", cfg.Database.URL).Msg("Starting Nexa sandbox API...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Serve until interrupted
	if err := srv.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
