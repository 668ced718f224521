// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ManuGH/hafeeds/internal/log"
)

// StartupConfig lists what PerformStartupChecks validates. Empty fields are
// skipped.
type StartupConfig struct {
	// DataDir is the file cache directory; it is created when missing.
	DataDir    string
	ListenAddr string
	// XMLTVPath is the export target; its parent directory must exist.
	XMLTVPath string
}

// PerformStartupChecks validates the environment before the daemon starts.
func PerformStartupChecks(ctx context.Context, cfg StartupConfig) error {
	logger := log.WithComponentFromContext(ctx, "startup-check")
	logger.Info().Str(log.FieldEvent, "startup.checks").Msg("running pre-flight startup checks")

	if cfg.DataDir != "" {
		if err := checkDataDir(logger, cfg.DataDir); err != nil {
			return fmt.Errorf("data directory check failed: %w", err)
		}
	}

	if cfg.ListenAddr != "" {
		if err := checkListenAddr(cfg.ListenAddr); err != nil {
			return err
		}
		logger.Info().Str("addr", cfg.ListenAddr).Msg("listen address is valid")
	}

	if cfg.XMLTVPath != "" {
		parent := filepath.Dir(cfg.XMLTVPath)
		info, err := os.Stat(parent)
		if err != nil {
			return fmt.Errorf("xmltv export directory %s: %w", parent, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("xmltv export directory %s is not a directory", parent)
		}
	}

	logger.Info().Str(log.FieldEvent, "startup.checks_passed").Msg("all startup checks passed")
	return nil
}

func checkDataDir(logger zerolog.Logger, path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
	}
	_ = os.Remove(testFile)

	logger.Info().Str("path", path).Msg("data directory is writable")
	return nil
}

func checkListenAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid listen port %q in %q", port, addr)
	}
	return nil
}
