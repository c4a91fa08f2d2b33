package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/bodycoach/internal/catalog"
	"github.com/meltforce/bodycoach/internal/config"
	"github.com/meltforce/bodycoach/internal/mcp"
	"github.com/meltforce/bodycoach/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remote := flag.String("remote", "", "BodyCoach server URL; switches from local SQLite to the REST API")
	apiKey := flag.String("api-key", os.Getenv("BODYCOACH_API_KEY"), "API key for remote mode (assessment tool)")
	flag.Parse()

	// Stdio transport owns stdout; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource

	if *remote != "" {
		ds = mcp.NewHTTPClient(*remote, *apiKey)
		log.Info("using remote data source", "url", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		if err := storage.RunMigrations(cfg.Database.Path, cfg.Database.MigrationsPath); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}

		store, err := storage.Open(cfg.Database.Path)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		cat, err := catalog.Load()
		if err != nil {
			log.Error("failed to load exercise catalog", "error", err)
			os.Exit(1)
		}

		ds = mcp.NewLocal(store, cat)
		log.Info("using local data source", "db", cfg.Database.Path)
	}

	srv := mcp.New(ds, Version, log)
	if err := server.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
