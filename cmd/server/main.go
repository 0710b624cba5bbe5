// Package main is the entry point for the catalog server.
//
// main() stays minimal by design: read configuration, create the logger,
// hand everything to internal/server. All actual logic lives in the
// imported packages so it can be tested without running a binary.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sakif/bookshelf/internal/server"
)

func main() {
	// Load a local .env file if present. In production configuration comes
	// from real environment variables, so a missing file is not an error.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// Template and static directories live under web/ at the project root;
	// with `go run ./cmd/server` the working directory is the project root,
	// so the relative defaults work directly.
	templateDir := "web/templates"
	if envDir := os.Getenv("TEMPLATE_DIR"); envDir != "" {
		templateDir = envDir
	}
	staticDir := "web/static"
	if envDir := os.Getenv("STATIC_DIR"); envDir != "" {
		staticDir = envDir
	}

	dbPath := "data/catalog.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	// os.MkdirAll creates parent directories as needed (like `mkdir -p`).
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	cfg := server.Config{
		Port:        port,
		TemplateDir: templateDir,
		StaticDir:   staticDir,
		DBPath:      dbPath,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
