package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/pmorales/devbank-mcp/internal/api"
	"github.com/pmorales/devbank-mcp/internal/config"
	"github.com/pmorales/devbank-mcp/internal/mcp"
	"github.com/pmorales/devbank-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to YAML config file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("DevBank MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	// All logging goes to stderr, stdout carries the MCP protocol.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("create database directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	logger.Info("devbank starting",
		"version", version,
		"driver", storage.DriverName,
		"build_mode", storage.BuildMode,
		"db", cfg.DBPath)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("mcp server listening on stdio")
		return mcp.NewServer(store, logger).Serve(ctx)
	})

	if cfg.HTTPAddr != "" {
		g.Go(func() error {
			logger.Info("http server listening", "addr", cfg.HTTPAddr)
			return api.NewServer(store, logger, cfg.HTTPAddr).Serve(ctx)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
