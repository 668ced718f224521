// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader builds an AppConfig: defaults, then the YAML file, then
// environment overrides.
type Loader struct {
	path string
}

// NewLoader creates a loader. An empty path skips the file layer.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the config file path.
func (l *Loader) Path() string { return l.path }

// Load reads and validates the configuration.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()
	if l.path != "" {
		if err := l.loadFile(l.path, &cfg); err != nil {
			return AppConfig{}, err
		}
	}
	applyEnv(&cfg)
	normalize(&cfg)
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Load is a shorthand for NewLoader(path).Load().
func Load(path string) (AppConfig, error) {
	return NewLoader(path).Load()
}

func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the -config flag
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// ${VAR} references let secrets come from the environment or .env.
	data = []byte(expandEnv(string(data)))

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays HAFEEDS_<SECTION>_<FIELD> variables.
func applyEnv(cfg *AppConfig) {
	cfg.LogLevel = ParseString(EnvPrefix+"LOG_LEVEL", cfg.LogLevel)
	cfg.DataDir = ParseString(EnvPrefix+"DATA_DIR", cfg.DataDir)
	cfg.Timezone = ParseString(EnvPrefix+"TIMEZONE", cfg.Timezone)

	cfg.API.ListenAddr = ParseString(EnvPrefix+"API_LISTEN_ADDR", cfg.API.ListenAddr)
	cfg.API.RateLimit = ParseInt(EnvPrefix+"API_RATE_LIMIT", cfg.API.RateLimit)

	const sp = EnvPrefix + "SCHEDULE_"
	s := &cfg.Schedule
	s.Enabled = ParseBool(sp+"ENABLED", s.Enabled)
	s.Source = ParseString(sp+"SOURCE", s.Source)
	s.User = ParseString(sp+"USER", s.User)
	s.BaseURL = ParseString(sp+"BASE_URL", s.BaseURL)
	s.FeedURL = ParseString(sp+"FEED_URL", s.FeedURL)
	s.Channels = ParseStringList(sp+"CHANNELS", s.Channels)
	s.DaysAhead = ParseInt(sp+"DAYS_AHEAD", s.DaysAhead)
	s.Interval = ParseDuration(sp+"INTERVAL", s.Interval)
	s.RequestTimeout = ParseDuration(sp+"REQUEST_TIMEOUT", s.RequestTimeout)
	s.FeedTimeout = ParseDuration(sp+"FEED_TIMEOUT", s.FeedTimeout)
	s.FeedTTL = ParseDuration(sp+"FEED_TTL", s.FeedTTL)
	s.BatchTimeout = ParseDuration(sp+"BATCH_TIMEOUT", s.BatchTimeout)
	s.RequestsPerSecond = ParseFloat(sp+"REQUESTS_PER_SECOND", s.RequestsPerSecond)
	s.ExportXMLTV = ParseString(sp+"EXPORT_XMLTV", s.ExportXMLTV)

	const cp = EnvPrefix + "CACHE_"
	c := &cfg.Cache
	c.Backend = ParseString(cp+"BACKEND", c.Backend)
	c.Dir = ParseString(cp+"DIR", c.Dir)
	c.Redis.Addr = ParseString(cp+"REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = ParseString(cp+"REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = ParseInt(cp+"REDIS_DB", c.Redis.DB)

	const rp = EnvPrefix + "RESERVATIONS_"
	r := &cfg.Reservations
	r.Enabled = ParseBool(rp+"ENABLED", r.Enabled)
	r.URL = ParseString(rp+"URL", r.URL)
	r.Login = ParseString(rp+"LOGIN", r.Login)
	r.Password = ParseString(rp+"PASSWORD", r.Password)
	r.HotelID = ParseString(rp+"HOTEL_ID", r.HotelID)
	r.Interval = ParseDuration(rp+"INTERVAL", r.Interval)
	r.DaysAhead = ParseInt(rp+"DAYS_AHEAD", r.DaysAhead)
	r.Timeout = ParseDuration(rp+"TIMEOUT", r.Timeout)
	r.StatusLocale = ParseString(rp+"STATUS_LOCALE", r.StatusLocale)

	const tp = EnvPrefix + "TELEMETRY_"
	t := &cfg.Telemetry
	t.Enabled = ParseBool(tp+"ENABLED", t.Enabled)
	t.Exporter = ParseString(tp+"EXPORTER", t.Exporter)
	t.Endpoint = ParseString(tp+"ENDPOINT", t.Endpoint)
	t.SamplingRate = ParseFloat(tp+"SAMPLING_RATE", t.SamplingRate)
	t.Environment = ParseString(tp+"ENVIRONMENT", t.Environment)
}

func normalize(cfg *AppConfig) {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Timezone = strings.TrimSpace(cfg.Timezone)
	cfg.Schedule.Source = strings.ToLower(strings.TrimSpace(cfg.Schedule.Source))
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	cfg.Reservations.StatusLocale = strings.ToLower(strings.TrimSpace(cfg.Reservations.StatusLocale))
	cfg.Telemetry.Exporter = strings.ToLower(strings.TrimSpace(cfg.Telemetry.Exporter))
	cfg.Telemetry.Endpoint = strings.TrimSpace(cfg.Telemetry.Endpoint)
	for i, ch := range cfg.Schedule.Channels {
		cfg.Schedule.Channels[i] = strings.TrimSpace(ch)
	}
}
