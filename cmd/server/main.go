package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/lib/pq"

	"github.com/todmy/ahp/internal/api"
	"github.com/todmy/ahp/internal/config"
	"github.com/todmy/ahp/internal/logging"
	"github.com/todmy/ahp/internal/session"
	"github.com/todmy/ahp/internal/source"
	"github.com/todmy/ahp/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	serverCfg := api.ServerConfig{
		Sessions:              session.NewManager(logger),
		FetchTimeout:          cfg.FetchTimeout,
		AllowedOrigins:        cfg.AllowedOrigins,
		AllowedHierarchyHosts: cfg.FetchHosts(),
		Logger:                logger,
	}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}
		serverCfg.HierarchyRepo = storage.NewPostgresHierarchyRepository(db)
	}

	var preload []source.Source
	if cfg.HierarchyFile != "" {
		preload = append(preload, source.File{Path: cfg.HierarchyFile})
	}
	if cfg.HierarchyURL != "" {
		preload = append(preload, source.NewHTTP(cfg.HierarchyURL, source.WithTimeout(cfg.FetchTimeout)))
	}
	for _, src := range preload {
		sess, err := serverCfg.Sessions.Load(context.Background(), src)
		if err != nil {
			return fmt.Errorf("failed to load hierarchy data: %w", err)
		}
		logger.Info("default session ready", "session_id", sess.ID, "root", sess.Hierarchy().Root().Name)
	}

	server := api.NewServer(serverCfg)

	logger.Info("starting ahp server", "port", cfg.Port)
	return server.Run(":" + cfg.Port)
}
