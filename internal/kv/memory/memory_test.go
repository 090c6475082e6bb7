package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Set(ctx, "a", "x"))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "k"}, keys)
}

func TestNewSeeded(t *testing.T) {
	dir := t.TempDir()

	// Missing file -> empty store
	s := NewSeeded("transactions", filepath.Join(dir, "missing.json"))
	_, ok, _ := s.Get(context.Background(), "transactions")
	assert.False(t, ok)

	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, []byte("  [{\"name\":\"a\",\"amount\":1,\"date\":\"d\"}]\n"), 0o644))
	s = NewSeeded("transactions", path)
	v, ok, _ := s.Get(context.Background(), "transactions")
	assert.True(t, ok)
	assert.Equal(t, `[{"name":"a","amount":1,"date":"d"}]`, v)
}
