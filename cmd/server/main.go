// Package main is the entry point for the SkillSlate API server.
//
// main stays minimal: load configuration, build a logger, hand both to the
// server package, and block until shutdown.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Gopi-techy/SkillSlate/internal/config"
	"github.com/Gopi-techy/SkillSlate/internal/server"
)

func main() {
	cfg := config.Load()

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		logger.Error("SECRET_KEY is not set")
		os.Exit(1)
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, generation endpoints will fail")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(cfg.DBPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
