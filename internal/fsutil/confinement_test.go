// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"ct1", "prima-cool", "a..b", "nova.json"} {
		assert.NoError(t, ValidateName(ok), ok)
	}
	for _, bad := range []string{"", ".", "..", "../x", "a/b", `a\b`, "a\x00b", "..hidden"} {
		err := ValidateName(bad)
		assert.ErrorIs(t, err, ErrInvalidName, bad)
	}
}

func TestConfineRelPath(t *testing.T) {
	root := t.TempDir()

	got, err := ConfineRelPath(root, "ct1.json")
	require.NoError(t, err)
	realRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realRoot, "ct1.json"), got)

	_, err = ConfineRelPath(root, "../escape.json")
	assert.Error(t, err)

	_, err = ConfineRelPath(root, "/etc/passwd")
	assert.Error(t, err)

	_, err = ConfineRelPath(root, `..\escape`)
	assert.Error(t, err)
}

func TestConfineRelPath_SymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret"), []byte("x"), 0o600))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret"), filepath.Join(root, "link.json")))

	_, err := ConfineRelPath(root, "link.json")
	assert.Error(t, err)
}

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	assert.NoError(t, IsRegularFile(file))
	assert.Error(t, IsRegularFile(dir))
	assert.Error(t, IsRegularFile(filepath.Join(dir, "missing")))
}
