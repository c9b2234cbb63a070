package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "tencent", cfg.Quote.Provider)
	assert.Greater(t, cfg.Quote.RateLimit, 0.0)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STAR_QUOTE_PROVIDER", "sina")
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "sina", cfg.Quote.Provider)
}

func TestResolveSymbolFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Run("DefaultWhenNothingPersisted", func(t *testing.T) {
		path, err := ResolveSymbolFile("")
		assert.NoError(t, err)
		assert.Equal(t, DefaultSymbolFile, path)
	})

	t.Run("FlagPathPersisted", func(t *testing.T) {
		path, err := ResolveSymbolFile("/tmp/my-symbols.yaml")
		assert.NoError(t, err)
		assert.Equal(t, "/tmp/my-symbols.yaml", path)

		raw, err := os.ReadFile(filepath.Join(home, userConfName))
		assert.NoError(t, err)
		assert.Contains(t, string(raw), "my-symbols.yaml")
	})

	t.Run("PersistedPathReused", func(t *testing.T) {
		path, err := ResolveSymbolFile("")
		assert.NoError(t, err)
		assert.Equal(t, "/tmp/my-symbols.yaml", path)
	})
}
