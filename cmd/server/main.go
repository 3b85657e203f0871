// Package main is the entry point for the videohub API server.
//
// The main package stays minimal. Its job is to:
// 1. Read configuration (environment and an optional .env file)
// 2. Create process-wide dependencies (logger, database, metrics)
// 3. Start the server
//
// All actual logic lives in the internal/ packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/videohub/internal/config"
	"github.com/sakif/videohub/internal/metrics"
	sqliteRepo "github.com/sakif/videohub/internal/repository/sqlite"
	"github.com/sakif/videohub/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// JWT_SECRET is required. Generate one with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Text logs for a terminal, JSON for log collectors in production.
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Production() {
		logHandler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	// === 3. OPEN THE DATABASE ===
	// os.MkdirAll creates the data directory if needed (like `mkdir -p`).
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 4. METRICS ===
	m := metrics.New()
	m.RegisterDB(db.SQL())

	if !cfg.GitHubEnabled() {
		logger.Info("GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET not set, GitHub sign-in disabled")
	}

	// === 5. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, db, m, logger)
	if err != nil {
		db.Close()
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
