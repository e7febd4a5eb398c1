package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.MinTokenLength)
	assert.Equal(t, 2, cfg.PromptWeight)
	assert.Equal(t, 1, cfg.CompletionWeight)
	assert.Equal(t, 4, cfg.TermMinLength)
}

func TestLoadFile(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("min_token_length: 4\ncache_path: /tmp/graphcache\n"), 0o644))

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.MinTokenLength)
		assert.Equal(t, "/tmp/graphcache", cfg.CachePath)
		assert.Equal(t, 2, cfg.PromptWeight) // untouched default
	})

	t.Run("unknown keys rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("min_token_lenght: 4\n"), 0o644))

		_, err := LoadFile(path)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile("/nonexistent/config.yaml")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	t.Run("zero values filled from defaults", func(t *testing.T) {
		var cfg Config
		require.NoError(t, cfg.Validate())
		assert.Equal(t, Default(), cfg)
	})

	t.Run("out-of-range values rejected", func(t *testing.T) {
		cfg := Default()
		cfg.MinTokenLength = -1
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

		cfg = Default()
		cfg.ClosestCutoff = 1.5
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

		cfg = Default()
		cfg.KeywordCap = 1
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}
