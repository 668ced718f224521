// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuGH/hafeeds/internal/epg"
	xlog "github.com/ManuGH/hafeeds/internal/log"
	"github.com/ManuGH/hafeeds/internal/metrics"
)

const redisKeyPrefix = "hafeeds:programs:"

// RedisOptions holds Redis connection configuration.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each payload as one string value. Keys never expire;
// Save overwrites them.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
	now     func() time.Time
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, errors.New("store: redis address is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger := xlog.WithComponentFromContext(ctx, "store")
	logger.Info().
		Str(xlog.FieldEvent, "store.connected").
		Str(xlog.FieldBackend, BackendRedis).
		Str("addr", opts.Addr).
		Int("db", opts.DB).
		Msg("connected to Redis cache store")

	return &RedisStore{client: client, timeout: 3 * time.Second, now: time.Now}, nil
}

func (s *RedisStore) Backend() string { return BackendRedis }

// Close releases the connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

func redisKey(key string) string { return redisKeyPrefix + key }

func (s *RedisStore) Save(ctx context.Context, key string, programs []epg.Program) error {
	if key == "" {
		return errors.New("save: empty key")
	}
	data, err := encodePayload(key, programs, s.now())
	if err != nil {
		metrics.RecordStoreError("save")
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, redisKey(key), data, 0).Err(); err != nil {
		metrics.RecordStoreError("save")
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) read(ctx context.Context, key string) (Payload, bool) {
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(rctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Payload{}, false
	}
	if err != nil {
		metrics.RecordStoreError("load")
		logger := xlog.WithComponentFromContext(ctx, "store")
		logger.Warn().Err(err).
			Str(xlog.FieldEvent, "store.load_failed").
			Str(xlog.FieldKey, key).
			Msg("redis get failed")
		return Payload{}, false
	}
	return decodePayload(ctx, key, data)
}

func (s *RedisStore) Load(ctx context.Context, key string) []epg.Program {
	p, ok := s.read(ctx, key)
	if !ok {
		return nil
	}
	return p.Programs
}

func (s *RedisStore) LastUpdate(ctx context.Context, key string) (time.Time, bool) {
	p, ok := s.read(ctx, key)
	if !ok {
		return time.Time{}, false
	}
	return parseLastUpdate(p.LastUpdate)
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		metrics.RecordStoreError("clear")
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) ClearAll(ctx context.Context) error {
	keys, err := s.scan(ctx)
	if err != nil {
		metrics.RecordStoreError("clear")
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		metrics.RecordStoreError("clear")
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) SizeBytes(ctx context.Context) int64 {
	keys, err := s.scan(ctx)
	if err != nil {
		metrics.RecordStoreError("size")
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var total int64
	for _, k := range keys {
		n, err := s.client.StrLen(ctx, k).Result()
		if err != nil {
			continue
		}
		total += n
	}
	return total
}

func (s *RedisStore) Keys(ctx context.Context) []string {
	keys, err := s.scan(ctx)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, redisKeyPrefix))
	}
	sort.Strings(out)
	return out
}

func (s *RedisStore) scan(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var keys []string
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}
