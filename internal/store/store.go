// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store persists the last good schedule of every channel so a failed
// fetch can be answered from cache. All reads degrade to "absent".
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/hafeeds/internal/epg"
	xlog "github.com/ManuGH/hafeeds/internal/log"
)

// FormatVersion is the payload version written by this build. Payloads with
// any other version are ignored.
const FormatVersion = 1

// Backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Payload is the persisted unit for one key.
type Payload struct {
	Version    int           `json:"version"`
	Key        string        `json:"channel_id"`
	LastUpdate string        `json:"last_update"`
	Programs   []epg.Program `json:"programs"`
}

// Store is a per-key cache of schedule entries.
type Store interface {
	// Save replaces the payload stored under key.
	Save(ctx context.Context, key string, programs []epg.Program) error
	// Load returns the stored entries, or nil if absent, unreadable or of
	// another format version.
	Load(ctx context.Context, key string) []epg.Program
	// LastUpdate returns when key was last saved.
	LastUpdate(ctx context.Context, key string) (time.Time, bool)
	Clear(ctx context.Context, key string) error
	ClearAll(ctx context.Context) error
	// SizeBytes returns the total stored size; 0 when it cannot be computed.
	SizeBytes(ctx context.Context) int64
	// Keys lists the stored keys.
	Keys(ctx context.Context) []string
	Backend() string
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	Dir     string
	Redis   RedisOptions
}

// New opens the configured backend.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}

func encodePayload(key string, programs []epg.Program, now time.Time) ([]byte, error) {
	if programs == nil {
		programs = []epg.Program{}
	}
	data, err := json.Marshal(Payload{
		Version:    FormatVersion,
		Key:        key,
		LastUpdate: now.Format(time.RFC3339),
		Programs:   programs,
	})
	if err != nil {
		return nil, fmt.Errorf("encode payload %s: %w", key, err)
	}
	return data, nil
}

// decodePayload returns ok=false for unreadable or foreign-version data.
func decodePayload(ctx context.Context, key string, data []byte) (Payload, bool) {
	logger := xlog.WithComponentFromContext(ctx, "store")

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Warn().Err(err).
			Str(xlog.FieldEvent, "store.decode_failed").
			Str(xlog.FieldKey, key).
			Msg("cached payload unreadable, treating as absent")
		return Payload{}, false
	}
	if p.Version != FormatVersion {
		logger.Debug().
			Str(xlog.FieldEvent, "store.version_mismatch").
			Str(xlog.FieldKey, key).
			Int("version", p.Version).
			Int("want", FormatVersion).
			Msg("cached payload has another format version, ignoring")
		return Payload{}, false
	}
	return p, true
}

// lastUpdateLayouts accepts RFC3339 and offset-less ISO-8601 timestamps.
var lastUpdateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseLastUpdate(s string) (time.Time, bool) {
	for _, layout := range lastUpdateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
