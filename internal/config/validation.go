// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"strings"
	"time"

	"github.com/ManuGH/hafeeds/internal/validate"
)

// MinRefreshInterval is the shortest accepted coordinator interval.
const MinRefreshInterval = time.Minute

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", "must be one of debug, info, warn, error", cfg.LogLevel)
	}
	v.NotEmpty("dataDir", cfg.DataDir)
	if _, err := cfg.Location(); err != nil {
		v.AddError("timezone", err.Error(), cfg.Timezone)
	}

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.NonNegative("api.rateLimit", cfg.API.RateLimit)

	if cfg.Schedule.Enabled {
		s := cfg.Schedule
		v.OneOf("schedule.source", s.Source, []string{"ct", "xmltv"})
		v.ChannelIDs("schedule.channels", s.Channels)
		v.Range("schedule.daysAhead", s.DaysAhead, 1, 14)
		v.MinDuration("schedule.interval", s.Interval, MinRefreshInterval)
		v.MinDuration("schedule.requestTimeout", s.RequestTimeout, time.Second)
		v.MinDuration("schedule.batchTimeout", s.BatchTimeout, time.Second)
		if s.RequestsPerSecond <= 0 {
			v.AddError("schedule.requestsPerSecond", "value must be positive", s.RequestsPerSecond)
		}
		switch s.Source {
		case "ct":
			v.URL("schedule.baseURL", s.BaseURL, []string{"http", "https"})
			v.NotEmpty("schedule.user", s.User)
		case "xmltv":
			v.URL("schedule.feedURL", s.FeedURL, []string{"http", "https"})
		}
	}

	v.OneOf("cache.backend", cfg.Cache.Backend, []string{"file", "redis"})
	if cfg.Cache.Backend == "redis" {
		v.NotEmpty("cache.redis.addr", cfg.Cache.Redis.Addr)
		v.NonNegative("cache.redis.db", cfg.Cache.Redis.DB)
	}

	if cfg.Reservations.Enabled {
		r := cfg.Reservations
		v.URL("reservations.url", r.URL, []string{"http", "https"})
		v.NotEmpty("reservations.login", r.Login)
		v.NotEmpty("reservations.hotelID", r.HotelID)
		v.MinDuration("reservations.interval", r.Interval, MinRefreshInterval)
		v.Range("reservations.daysAhead", r.DaysAhead, 1, 365)
		v.OneOf("reservations.statusLocale", strings.ToLower(r.StatusLocale), []string{"en", "cz"})
	}

	if cfg.Telemetry.Enabled {
		t := cfg.Telemetry
		v.OneOf("telemetry.exporter", t.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", t.Endpoint)
		if t.SamplingRate < 0 || t.SamplingRate > 1 {
			v.AddError("telemetry.samplingRate", "must be between 0 and 1", t.SamplingRate)
		}
	}

	if !cfg.Schedule.Enabled && !cfg.Reservations.Enabled {
		v.AddError("schedule.enabled", "at least one of schedule or reservations must be enabled", false)
	}

	return v.Err()
}
