package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))

	_, ok, err := s.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "transactions", "[1]"))
	require.NoError(t, s.Set(ctx, "transactions", "[1,2]"))

	v, ok, err := s.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,2]", v)

	// A reopened store sees the same content.
	s2, err := New(dir)
	require.NoError(t, err)
	v, _, err = s2.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", v)

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreEscapesKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "../escape", "x"))
	_, err = os.Stat(filepath.Join(dir, "..%2Fescape.kv"))
	assert.NoError(t, err)
}

func TestFileStoreCancelledContext(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
}

func TestFileStoreKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "transactions", "[]"))
	require.NoError(t, s.Set(ctx, "transactions.corrupt.1700000000", "garbage"))
	require.NoError(t, s.Set(ctx, "../escape", "x"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"../escape", "transactions", "transactions.corrupt.1700000000"}, keys)
}
