package chapterstorage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanatsumi/rakuyomi/rerr"
)

func TestContentPath_IsDeterministicAndUrlSafe(t *testing.T) {
	a := ContentPath("/base", "src", "manga", "ch1")
	b := ContentPath("/base", "src", "manga", "ch1")

	assert.Equal(t, a, b)
	assert.True(t, filepath.Ext(a) == ".cbz")
	assert.NotContains(t, filepath.Base(a), "+")
	assert.NotContains(t, filepath.Base(a), "/")
	assert.NotContains(t, filepath.Base(a), "=")
}

func TestContentPath_DiffersByChapterID(t *testing.T) {
	a := ContentPath("/base", "src", "manga", "ch1")
	b := ContentPath("/base", "src", "manga", "ch2")
	assert.NotEqual(t, a, b)
}

func TestStore_WritesContentAddressedFileAndResolves(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 0, nil)

	path, err := s.Store(context.Background(), "src", "manga", "ch1", bytes.NewReader([]byte("cbz-bytes")))
	require.NoError(t, err)
	assert.Equal(t, ContentPath(dir, "src", "manga", "ch1"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cbz-bytes", string(data))

	resolved, ok := s.Resolve("src", "manga", "ch1")
	assert.True(t, ok)
	assert.Equal(t, path, resolved)
}

func TestResolve_FallsBackToLegacyLayout(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 0, nil)

	legacy := legacyPath(dir, "src", "ch1")
	require.NoError(t, os.WriteFile(legacy, []byte("legacy"), 0o644))

	resolved, ok := s.Resolve("src", "manga", "ch1")
	assert.True(t, ok)
	assert.Equal(t, legacy, resolved)
}

func TestResolve_MissingChapter_ReturnsFalse(t *testing.T) {
	s := New(t.TempDir(), 0, nil)
	_, ok := s.Resolve("src", "manga", "missing")
	assert.False(t, ok)
}

func TestStore_EvictsLeastRecentlyUsedWhenOverCap(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 10, nil)

	_, err := s.Store(context.Background(), "src", "manga", "old", bytes.NewReader(bytes.Repeat([]byte("a"), 5)))
	require.NoError(t, err)

	_, err = s.Store(context.Background(), "src", "manga", "new", bytes.NewReader(bytes.Repeat([]byte("b"), 8)))
	require.NoError(t, err)

	_, oldExists := s.Resolve("src", "manga", "old")
	_, newExists := s.Resolve("src", "manga", "new")
	assert.False(t, oldExists)
	assert.True(t, newExists)
}

func TestStore_RefusesWriteThatCannotFitUnderCap(t *testing.T) {
	s := New(t.TempDir(), 4, nil)

	_, err := s.Store(context.Background(), "src", "manga", "too-big", bytes.NewReader(bytes.Repeat([]byte("x"), 100)))
	require.Error(t, err)
	assert.Equal(t, rerr.StorageFull, rerr.KindOf(err))
}

func TestRemove_DeletesStoredChapter(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 0, nil)

	_, err := s.Store(context.Background(), "src", "manga", "ch1", bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	err = s.Remove("src", "manga", "ch1")
	assert.NoError(t, err)

	_, ok := s.Resolve("src", "manga", "ch1")
	assert.False(t, ok)
}

func TestRemove_MissingChapter_ReturnsNotFound(t *testing.T) {
	s := New(t.TempDir(), 0, nil)

	err := s.Remove("src", "manga", "missing")
	require.Error(t, err)
	assert.Equal(t, rerr.NotFound, rerr.KindOf(err))
}
