package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/bodycoach/internal/backup"
	"github.com/meltforce/bodycoach/internal/config"
	"github.com/meltforce/bodycoach/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	export := flag.String("export", "", "write a backup bundle to this file ('-' for stdout)")
	importPath := flag.String("import", "", "restore a backup bundle from this file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*export == "") == (*importPath == "") {
		fmt.Fprintf(os.Stderr, "Usage: bodycoach-backup -config config.yaml (-export FILE | -import FILE)\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

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

	ctx := context.Background()
	mgr := backup.NewManager(store, log)

	if *export != "" {
		out := os.Stdout
		if *export != "-" {
			f, err := os.Create(*export)
			if err != nil {
				log.Error("failed to create export file", "path", *export, "error", err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}
		if err := mgr.Export(ctx, out); err != nil {
			log.Error("export failed", "error", err)
			os.Exit(1)
		}
		if *export != "-" {
			log.Info("backup written", "path", *export)
		}
		return
	}

	f, err := os.Open(*importPath)
	if err != nil {
		log.Error("failed to open backup file", "path", *importPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	stats, err := mgr.Import(ctx, f)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("backup restored",
		"sessions", stats.SessionsApplied,
		"logs", stats.LogsApplied,
		"programs", stats.ProgramsApplied,
		"skipped", stats.Skipped,
		"prefs_replaced", stats.PrefsReplaced,
	)
}
