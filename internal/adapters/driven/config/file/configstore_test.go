package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore(t *testing.T) {
	t.Run("set and get round trip", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set("github.token", "ghp_abc123"))
		require.NoError(t, store.Set("harvest.resume", true))

		assert.Equal(t, "ghp_abc123", store.GetString("github.token"))
		assert.True(t, store.GetBool("harvest.resume"))
	})

	t.Run("values persist across reopens", func(t *testing.T) {
		dir := t.TempDir()

		first, err := NewConfigStore(dir)
		require.NoError(t, err)
		require.NoError(t, first.Set("repository", "ethereum/EIPs"))

		second, err := NewConfigStore(dir)
		require.NoError(t, err)
		assert.Equal(t, "ethereum/EIPs", second.GetString("repository"))
	})

	t.Run("nested tables flatten to dot keys", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[github]\ntoken = \"ghp_nested\"\n"), 0600))

		store, err := NewConfigStore(dir)
		require.NoError(t, err)
		assert.Equal(t, "ghp_nested", store.GetString("github.token"))
	})

	t.Run("missing keys return zero values", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		assert.Empty(t, store.GetString("nope"))
		assert.False(t, store.GetBool("nope"))
		_, ok := store.Get("nope")
		assert.False(t, ok)
	})

	t.Run("config file keeps restricted permissions", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, store.Set("github.token", "secret"))

		info, err := os.Stat(store.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})
}
