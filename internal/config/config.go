// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the daemon configuration from a YAML file with
// HAFEEDS_* environment overrides and keeps it reloadable at runtime.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "time/tzdata" // embedded zone database for minimal containers
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HAFEEDS_"

// AppConfig is the complete daemon configuration.
type AppConfig struct {
	LogLevel     string             `yaml:"logLevel"`
	DataDir      string             `yaml:"dataDir"`
	Timezone     string             `yaml:"timezone"`
	API          APIConfig          `yaml:"api"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	Cache        CacheConfig        `yaml:"cache"`
	Reservations ReservationsConfig `yaml:"reservations"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int `yaml:"rateLimit"`
}

// ScheduleConfig configures the TV schedule coordinator.
type ScheduleConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Source            string        `yaml:"source"`
	User              string        `yaml:"user"`
	BaseURL           string        `yaml:"baseURL"`
	FeedURL           string        `yaml:"feedURL"`
	Channels          []string      `yaml:"channels"`
	DaysAhead         int           `yaml:"daysAhead"`
	Interval          time.Duration `yaml:"interval"`
	RequestTimeout    time.Duration `yaml:"requestTimeout"`
	FeedTimeout       time.Duration `yaml:"feedTimeout"`
	FeedTTL           time.Duration `yaml:"feedTTL"`
	BatchTimeout      time.Duration `yaml:"batchTimeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	ExportXMLTV       string        `yaml:"exportXMLTV"`
}

// CacheConfig selects the persistence backend of the schedule cache.
type CacheConfig struct {
	Backend string      `yaml:"backend"`
	Dir     string      `yaml:"dir"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ReservationsConfig configures the reservation coordinator.
type ReservationsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	URL          string        `yaml:"url"`
	Login        string        `yaml:"login"`
	Password     string        `yaml:"password"`
	HotelID      string        `yaml:"hotelID"`
	Interval     time.Duration `yaml:"interval"`
	DaysAhead    int           `yaml:"daysAhead"`
	Timeout      time.Duration `yaml:"timeout"`
	StatusLocale string        `yaml:"statusLocale"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is "grpc" or "http".
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		LogLevel: "info",
		DataDir:  "/var/lib/hafeeds",
		Timezone: "Europe/Prague",
		API: APIConfig{
			ListenAddr: ":8089",
			RateLimit:  120,
		},
		Schedule: ScheduleConfig{
			Enabled:           true,
			Source:            "ct",
			User:              "test",
			BaseURL:           "https://www.ceskatelevize.cz/services-old/programme/xml/schedule.php",
			FeedURL:           "http://xmltv.tvpc.cz/xmltv.xml",
			Channels:          []string{"ct1", "ct2"},
			DaysAhead:         7,
			Interval:          6 * time.Hour,
			RequestTimeout:    30 * time.Second,
			FeedTimeout:       60 * time.Second,
			FeedTTL:           time.Hour,
			BatchTimeout:      120 * time.Second,
			RequestsPerSecond: 10,
		},
		Cache: CacheConfig{
			Backend: "file",
		},
		Reservations: ReservationsConfig{
			URL:          "https://api.previo.app/x1/hotel/searchReservations",
			Interval:     15 * time.Minute,
			DaysAhead:    30,
			Timeout:      30 * time.Second,
			StatusLocale: "en",
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
	}
}

// CacheDir returns the file cache directory, defaulting under DataDir.
func (c AppConfig) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(c.DataDir, "tv_program_data")
}

// Location loads the configured time zone. Schedule dates and reservation
// terms are interpreted in it.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Clone returns a deep copy.
func (c AppConfig) Clone() AppConfig {
	out := c
	out.Schedule.Channels = append([]string(nil), c.Schedule.Channels...)
	return out
}
