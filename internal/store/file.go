// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/hafeeds/internal/epg"
	"github.com/ManuGH/hafeeds/internal/fsutil"
	xlog "github.com/ManuGH/hafeeds/internal/log"
	"github.com/ManuGH/hafeeds/internal/metrics"
)

const fileExt = ".json"

// FileStore keeps one JSON file per key in dir. Files are replaced
// atomically, so a crash never leaves a half-written payload behind.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("store: empty cache directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (s *FileStore) Backend() string { return BackendFile }

// Dir returns the cache directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) (string, error) {
	if err := fsutil.ValidateName(key); err != nil {
		return "", err
	}
	return fsutil.ConfineRelPath(s.dir, key+fileExt)
}

func (s *FileStore) Save(ctx context.Context, key string, programs []epg.Program) error {
	path, err := s.path(key)
	if err != nil {
		metrics.RecordStoreError("save")
		return fmt.Errorf("save %q: %w", key, err)
	}
	data, err := encodePayload(key, programs, s.now())
	if err != nil {
		metrics.RecordStoreError("save")
		return err
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		metrics.RecordStoreError("save")
		return fmt.Errorf("write cache file %s: %w", path, err)
	}

	logger := xlog.WithComponentFromContext(ctx, "store")
	logger.Debug().
		Str(xlog.FieldEvent, "store.saved").
		Str(xlog.FieldKey, key).
		Int(xlog.FieldCount, len(programs)).
		Msg("cache file written")
	return nil
}

func (s *FileStore) read(ctx context.Context, key string) (Payload, bool) {
	logger := xlog.WithComponentFromContext(ctx, "store")

	path, err := s.path(key)
	if err != nil {
		logger.Warn().Err(err).Str(xlog.FieldKey, key).Msg("rejected cache key")
		return Payload{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug().Str(xlog.FieldKey, key).Msg("no cache file")
		} else {
			metrics.RecordStoreError("load")
			logger.Warn().Err(err).
				Str(xlog.FieldEvent, "store.load_failed").
				Str(xlog.FieldPath, path).
				Msg("cache file unreadable")
		}
		return Payload{}, false
	}
	return decodePayload(ctx, key, data)
}

func (s *FileStore) Load(ctx context.Context, key string) []epg.Program {
	p, ok := s.read(ctx, key)
	if !ok {
		return nil
	}
	return p.Programs
}

func (s *FileStore) LastUpdate(ctx context.Context, key string) (time.Time, bool) {
	p, ok := s.read(ctx, key)
	if !ok {
		return time.Time{}, false
	}
	return parseLastUpdate(p.LastUpdate)
}

func (s *FileStore) Clear(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return fmt.Errorf("clear %q: %w", key, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		metrics.RecordStoreError("clear")
		return fmt.Errorf("remove cache file %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) ClearAll(ctx context.Context) error {
	var errs []error
	for _, key := range s.Keys(ctx) {
		if err := s.Clear(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *FileStore) SizeBytes(ctx context.Context) int64 {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		metrics.RecordStoreError("size")
		return 0
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}

func (s *FileStore) Keys(ctx context.Context) []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(keys)
	return keys
}
