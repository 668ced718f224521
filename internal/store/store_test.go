// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Config{Backend: BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, BackendFile, s.Backend())

	mr := miniredis.RunT(t)
	s, err = New(ctx, Config{Backend: BackendRedis, Redis: RedisOptions{Addr: mr.Addr()}})
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, s.Backend())
	require.NoError(t, s.(*RedisStore).Close())

	_, err = New(ctx, Config{Backend: "s3"})
	assert.Error(t, err)
}

func TestParseLastUpdate(t *testing.T) {
	got, ok := parseLastUpdate("2025-03-14T12:00:00Z")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)))

	got, ok = parseLastUpdate("2025-03-14T12:00:00.123456")
	require.True(t, ok)
	assert.Equal(t, 12, got.Hour())

	_, ok = parseLastUpdate("yesterday")
	assert.False(t, ok)
}
