// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	t.Setenv("TAXACTL_CACHE", "1")
	t.Setenv("TAXACTL_CACHE_DIR", t.TempDir())

	key := "https://example.org/efetch.fcgi?db=taxonomy&id=9606"
	err := Write([]string{"entrez"}, key, []byte("<TaxaSet/>\n"))
	require.NoError(t, err)

	entry, ok := Read([]string{"entrez"}, key)
	require.True(t, ok, "entry should be readable back")
	assert.Equal(t, key, entry.Key)
	assert.Equal(t, []byte("<TaxaSet/>"), entry.Data, "data is trimmed on read")
	assert.Len(t, entry.EncodedKey, 32, "filenames are md5 hex")

	// Different keys land in different files
	other, ok := Read([]string{"entrez"}, key+"&retmode=xml")
	assert.False(t, ok)
	assert.Nil(t, other)
}

func TestDisabled(t *testing.T) {
	t.Setenv("TAXACTL_CACHE", "0")
	t.Setenv("TAXACTL_CACHE_DIR", t.TempDir())

	assert.False(t, Enabled())
	assert.NoError(t, Write(nil, "key", []byte("data")))

	_, ok := Read(nil, "key")
	assert.False(t, ok, "reads miss while disabled")
}

func TestEnsureBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "cache")
	t.Setenv("TAXACTL_CACHE", "")
	t.Setenv("TAXACTL_CACHE_DIR", base)

	dir, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, dir)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPurge(t *testing.T) {
	base := t.TempDir()
	t.Setenv("TAXACTL_CACHE", "1")
	t.Setenv("TAXACTL_CACHE_DIR", base)

	require.NoError(t, Write([]string{"entrez"}, "old", []byte("stale")))
	require.NoError(t, Write([]string{"entrez"}, "new", []byte("fresh")))

	// Age one entry past the cutoff
	oldPath, ok := EntryPath([]string{"entrez"}, "old")
	require.True(t, ok)
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	require.NoError(t, Purge(24))

	_, ok = Read([]string{"entrez"}, "old")
	assert.False(t, ok, "stale entry should be removed")
	_, ok = Read([]string{"entrez"}, "new")
	assert.True(t, ok, "fresh entry should survive")
}

func TestPurgeMissingBase(t *testing.T) {
	t.Setenv("TAXACTL_CACHE_DIR", filepath.Join(t.TempDir(), "never-created"))
	assert.NoError(t, Purge(24))
	assert.NoError(t, Purge(0))
}
