// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ManuGH/hafeeds/internal/config"
	"github.com/ManuGH/hafeeds/internal/daemon"
	"github.com/ManuGH/hafeeds/internal/health"
	xlog "github.com/ManuGH/hafeeds/internal/log"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:]))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the configuration")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	xlog.Configure(xlog.Config{Level: "info", Version: version})
	logger := xlog.WithComponent("daemon")

	if err := loadEnvFile(*envFile); err != nil {
		logger.Fatal().Err(err).Str(xlog.FieldEvent, "config.env_file_failed").Str(xlog.FieldPath, *envFile).Msg("failed to load env file")
	}

	path := resolveConfigPath(*configPath)
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xlog.FieldEvent, "config.load_failed").
			Str(xlog.FieldPath, path).
			Msg("failed to load configuration")
	}

	xlog.Configure(xlog.Config{Level: cfg.LogLevel, Version: version})
	logger = xlog.WithComponent("daemon")
	if path != "" {
		logger.Info().Str(xlog.FieldEvent, "config.loaded").Str("source", "file").Str(xlog.FieldPath, path).Msg("loaded configuration from file")
	} else {
		logger.Info().Str(xlog.FieldEvent, "config.loaded").Str("source", "env+defaults").Msg("loaded configuration from environment and defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := health.PerformStartupChecks(ctx, health.StartupConfig{
		DataDir:    cfg.DataDir,
		ListenAddr: cfg.API.ListenAddr,
		XMLTVPath:  cfg.Schedule.ExportXMLTV,
	}); err != nil {
		logger.Fatal().
			Err(err).
			Str(xlog.FieldEvent, "startup.check_failed").
			Msg("Startup checks failed. Please verify configuration and permissions.")
	}

	logger.Info().
		Str(xlog.FieldEvent, "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.API.ListenAddr).
		Msg("starting hafeeds")
	logStartupSummary(cfg)

	holder := config.NewConfigHolder(cfg, nil, path)
	app, err := daemon.NewApp(ctx, holder, daemon.Options{Version: version})
	if err != nil {
		logger.Fatal().Err(err).Str(xlog.FieldEvent, "daemon.init_failed").Msg("failed to initialize daemon")
	}

	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str(xlog.FieldEvent, "daemon.failed").Msg("daemon stopped with error")
		os.Exit(1)
	}
	logger.Info().Str(xlog.FieldEvent, "shutdown").Msg("hafeeds stopped")
}

// loadEnvFile loads KEY=VALUE pairs without overriding the environment.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// resolveConfigPath prefers the flag over HAFEEDS_CONFIG. Empty means
// environment and defaults only.
func resolveConfigPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	return strings.TrimSpace(config.ParseString(config.EnvPrefix+"CONFIG", ""))
}

func logStartupSummary(cfg config.AppConfig) {
	logger := xlog.WithComponent("daemon")
	logger.Info().Msgf("→ Data dir: %s (timezone %s)", cfg.DataDir, cfg.Timezone)
	if cfg.Schedule.Enabled {
		s := cfg.Schedule
		src := config.MaskURL(s.BaseURL)
		if s.Source == "xmltv" {
			src = config.MaskURL(s.FeedURL)
		}
		logger.Info().Msgf("→ Schedule: %s from %s, %d channels, %d days, every %s", s.Source, src, len(s.Channels), s.DaysAhead, s.Interval)
		if s.ExportXMLTV != "" {
			logger.Info().Msgf("→ XMLTV export: %s", s.ExportXMLTV)
		}
	} else {
		logger.Info().Msg("→ Schedule: disabled")
	}
	logger.Info().Msgf("→ Cache: %s", cfg.Cache.Backend)
	if cfg.Reservations.Enabled {
		r := cfg.Reservations
		logger.Info().Msgf("→ Reservations: hotel %s via %s, %d days, every %s", r.HotelID, config.MaskURL(r.URL), r.DaysAhead, r.Interval)
	} else {
		logger.Info().Msg("→ Reservations: disabled")
	}
}
