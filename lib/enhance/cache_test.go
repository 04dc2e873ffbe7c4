package enhance

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenCacheMissingFile(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)
	require.Zero(t, cache.Len())
}

func TestOpenCacheEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))

	cache, err := OpenCache(path)
	require.NoError(t, err)
	require.Zero(t, cache.Len())
}

func TestCachePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	cache, err := OpenCache(path)
	require.NoError(t, err)
	require.NoError(t, cache.Put("abc123", ModeContext, "some context"))

	reopened, err := OpenCache(path)
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Len())

	rec, ok := reopened.Get("abc123", ModeContext)
	require.True(t, ok)
	require.Equal(t, "some context", rec.Text)
	require.Equal(t, ModeContext, rec.Mode)
	require.False(t, rec.ComputedAt.IsZero())

	// same entry under another mode is a different record
	_, ok = reopened.Get("abc123", ModeFacts)
	require.False(t, ok)
}

func TestOpenCacheCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json at all"), 0644))

	_, err := OpenCache(path)
	require.Error(t, err)

	var corrupt CorruptError
	require.True(t, errors.As(err, &corrupt))
	require.Equal(t, path, corrupt.Path)
}

func TestOpenCacheIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"abc123:context": {
			"entry_id": "abc123",
			"mode": "context",
			"text": "hello",
			"computed_at": "2024-05-01T00:00:00Z",
			"some_future_field": 42
		}
	}`), 0644))

	cache, err := OpenCache(path)
	require.NoError(t, err)

	rec, ok := cache.Get("abc123", ModeContext)
	require.True(t, ok)
	require.Equal(t, "hello", rec.Text)
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"context", "facts", "both", " Both "} {
		_, err := ParseMode(valid)
		require.NoError(t, err)
	}
	_, err := ParseMode("prose")
	require.Error(t, err)
}
