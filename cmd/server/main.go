// Package main is the entry point for the gamereel API server. It reads
// configuration, builds the logger, and hands off to internal/server.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/nbarreto/gamereel/internal/server"
)

func main() {
	// A missing .env is fine; containers inject real environment variables.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
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

	dbPath := "data/gamereel.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required; generate one with: openssl rand -hex 32")
		os.Exit(1)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "data/uploads"
	}

	cfg := server.Config{
		Port:               port,
		DBPath:             dbPath,
		JWTSecret:          jwtSecret,
		TwitchClientID:     os.Getenv("TWITCH_CLIENT_ID"),
		TwitchClientSecret: os.Getenv("TWITCH_CLIENT_SECRET"),
		GiphyAPIKey:        os.Getenv("GIPHY_API_KEY"),
		UploadDir:          uploadDir,
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
