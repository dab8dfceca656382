package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/microhook/hook"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, hook.DuplicatePolicy_Fail, cfg.OnDuplicate)
		assert.True(t, cfg.RetainWatches)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("MICROHOOK_ON_DUPLICATE", "ignore")
		t.Setenv("MICROHOOK_RETAIN_WATCHES", "false")
		t.Setenv("MICROHOOK_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, hook.DuplicatePolicy_Ignore, cfg.OnDuplicate)
		assert.False(t, cfg.RetainWatches)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("invalid level", func(t *testing.T) {
		t.Setenv("MICROHOOK_LOG_LEVEL", "loud")
		_, err := Load()
		require.ErrorIs(t, err, ErrInvalidLogLevel)
	})

	t.Run("invalid policy", func(t *testing.T) {
		t.Setenv("MICROHOOK_ON_DUPLICATE", "replace")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "microhook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("on_duplicate: ignore\nretain_watches: false\nlog_level: warn\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, hook.DuplicatePolicy_Ignore, cfg.OnDuplicate)
	assert.False(t, cfg.RetainWatches)
	assert.Equal(t, "warn", cfg.LogLevel)

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("MICROHOOK_LOG_LEVEL", "error")
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}

func TestConfig_Options(t *testing.T) {
	cfg := &Config{OnDuplicate: hook.DuplicatePolicy_Ignore, RetainWatches: false, LogLevel: "warn"}
	var buf bytes.Buffer
	opts, err := cfg.Options(&buf)
	require.NoError(t, err)

	o := hook.NewOptions(opts...)
	assert.Equal(t, hook.DuplicatePolicy_Ignore, o.OnDuplicate)
	assert.False(t, o.RetainWatches)

	o.Logger.Info().Msg("hidden")
	o.Logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = (&Config{LogLevel: "loud"}).Options(&buf)
	require.ErrorIs(t, err, ErrInvalidLogLevel)
}
