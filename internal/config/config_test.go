// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/hafeeds/internal/validate"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Schedule.Interval != 6*time.Hour {
		t.Errorf("expected default interval 6h, got %s", cfg.Schedule.Interval)
	}
	if cfg.Reservations.Interval != 15*time.Minute {
		t.Errorf("expected default reservation interval 15m, got %s", cfg.Reservations.Interval)
	}
	if got := cfg.CacheDir(); got != filepath.Join(cfg.DataDir, "tv_program_data") {
		t.Errorf("unexpected cache dir %q", got)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
logLevel: DEBUG
dataDir: /srv/hafeeds
api:
  listenAddr: "127.0.0.1:9000"
schedule:
  source: xmltv
  channels: [ct1, " nova "]
  daysAhead: 3
  interval: 2h
cache:
  backend: redis
  redis:
    addr: localhost:6379
reservations:
  enabled: true
  login: front@hotel.cz
  password: s3cret
  hotelID: "731"
  statusLocale: CZ
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level not normalized: %q", cfg.LogLevel)
	}
	if cfg.Schedule.Source != "xmltv" || cfg.Schedule.DaysAhead != 3 {
		t.Errorf("schedule not applied: %+v", cfg.Schedule)
	}
	if cfg.Schedule.Interval != 2*time.Hour {
		t.Errorf("expected interval 2h, got %s", cfg.Schedule.Interval)
	}
	if !slices.Equal(cfg.Schedule.Channels, []string{"ct1", "nova"}) {
		t.Errorf("channels not trimmed: %v", cfg.Schedule.Channels)
	}
	// Untouched keys keep their defaults.
	if cfg.Schedule.RequestTimeout != 30*time.Second {
		t.Errorf("expected default request timeout, got %s", cfg.Schedule.RequestTimeout)
	}
	if cfg.Reservations.StatusLocale != "cz" || cfg.Reservations.HotelID != "731" {
		t.Errorf("reservations not applied: %+v", cfg.Reservations)
	}
	if cfg.Cache.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr not applied: %q", cfg.Cache.Redis.Addr)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yml", "schedule:\n  channels: [ct1]\n  daysAhead: 3\n")

	t.Setenv(EnvPrefix+"SCHEDULE_CHANNELS", "ct2, ct24")
	t.Setenv(EnvPrefix+"SCHEDULE_DAYS_AHEAD", "5")
	t.Setenv(EnvPrefix+"SCHEDULE_INTERVAL", "30m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !slices.Equal(cfg.Schedule.Channels, []string{"ct2", "ct24"}) {
		t.Errorf("expected env channels, got %v", cfg.Schedule.Channels)
	}
	if cfg.Schedule.DaysAhead != 5 {
		t.Errorf("expected days 5, got %d", cfg.Schedule.DaysAhead)
	}
	if cfg.Schedule.Interval != 30*time.Minute {
		t.Errorf("expected interval 30m, got %s", cfg.Schedule.Interval)
	}
}

func TestLoad_ExpandsEnvReferences(t *testing.T) {
	t.Setenv("TEST_PREVIO_PASSWORD", "from-env")
	path := writeFile(t, "config.yaml", `
reservations:
  enabled: true
  login: user
  password: ${TEST_PREVIO_PASSWORD}
  hotelID: "1"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Reservations.Password != "from-env" {
		t.Errorf("expected expanded password, got %q", cfg.Reservations.Password)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown field", "config.yaml", "schedule:\n  chanels: [ct1]\n", "field chanels not found"},
		{"unsupported format", "config.json", "{}", "unsupported config format"},
		{"days out of range", "config.yaml", "schedule:\n  daysAhead: 15\n", "schedule.daysAhead"},
		{"interval too short", "config.yaml", "schedule:\n  interval: 10s\n", "schedule.interval"},
		{"bad source", "config.yaml", "schedule:\n  source: rss\n", "schedule.source"},
		{"redis without addr", "config.yaml", "cache:\n  backend: redis\n", "cache.redis.addr"},
		{"reservations without hotel", "config.yaml", "reservations:\n  enabled: true\n  login: x\n", "reservations.hotelID"},
		{"bad locale", "config.yaml", "reservations:\n  enabled: true\n  login: x\n  hotelID: \"1\"\n  statusLocale: de\n", "reservations.statusLocale"},
		{"duplicate channels", "config.yaml", "schedule:\n  channels: [ct1, ct1]\n", "schedule.channels[1]"},
		{"bad exporter", "config.yaml", "telemetry:\n  enabled: true\n  exporter: zipkin\n", "telemetry.exporter"},
		{"sampling out of range", "config.yaml", "telemetry:\n  enabled: true\n  samplingRate: 1.5\n", "telemetry.samplingRate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_TelemetryEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"TELEMETRY_ENABLED", "true")
	t.Setenv(EnvPrefix+"TELEMETRY_EXPORTER", " HTTP ")
	t.Setenv(EnvPrefix+"TELEMETRY_ENDPOINT", "collector:4318")
	t.Setenv(EnvPrefix+"TELEMETRY_SAMPLING_RATE", "0.25")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tel := cfg.Telemetry
	if !tel.Enabled || tel.Exporter != "http" || tel.Endpoint != "collector:4318" || tel.SamplingRate != 0.25 {
		t.Errorf("unexpected telemetry config %+v", tel)
	}
	if tel.Environment != "production" {
		t.Errorf("expected default environment, got %q", tel.Environment)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("empty file must load defaults: %v", err)
	}
	if cfg.API.ListenAddr != ":8089" {
		t.Errorf("expected default listen addr, got %q", cfg.API.ListenAddr)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	cfg.API.ListenAddr = "nope"
	cfg.Schedule.Enabled = false

	err := Validate(cfg)
	var verr validate.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	// log level, listen addr and "nothing enabled"
	if got := len(verr.Errors()); got != 3 {
		t.Errorf("expected 3 errors, got %d: %v", got, verr)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	c := cfg.Clone()
	c.Schedule.Channels[0] = "x"
	if cfg.Schedule.Channels[0] == "x" {
		t.Error("Clone must deep copy channels")
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("default timezone: %v", err)
	}
	if loc.String() != "Europe/Prague" {
		t.Errorf("expected Europe/Prague, got %s", loc)
	}

	cfg.Timezone = "Mars/Olympus"
	if _, err := cfg.Location(); err == nil {
		t.Error("expected error for unknown zone")
	}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "timezone") {
		t.Errorf("expected timezone validation error, got %v", err)
	}
}
