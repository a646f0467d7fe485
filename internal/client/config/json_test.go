package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJSON_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"api_base_url":            "https://www.example:9000",
		"transcode_poll_interval": "10s",
		"transcode_timeout":       int64(3 * time.Minute),
		"transcode_wait":          false,
		"simulated_step":          25,
	})

	t.Run("loads from flags", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJSON(cfg, []string{"-config", pathFlag}))

		assert.Equal(t, "https://www.example:9000", cfg.APIBaseURL)
		assert.Equal(t, 10*time.Second, cfg.TranscodePollInterval)
		assert.Equal(t, 3*time.Minute, cfg.TranscodeTimeout)
		assert.False(t, cfg.TranscodeWait)
		assert.Equal(t, 25, cfg.SimulatedStep)
	})

	t.Run("absent keys keep earlier values", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJSON(cfg, []string{"-c", pathFlag}))

		assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
		assert.True(t, cfg.Compensate)
		assert.Equal(t, "text", cfg.LogFormat)
	})

	t.Run("no flags → no changes", func(t *testing.T) {
		cfg := &Config{APIBaseURL: "https://defaults:1234", CacheTTL: 42 * time.Second}
		require.NoError(t, parseJSON(cfg, nil))

		assert.Equal(t, "https://defaults:1234", cfg.APIBaseURL)
		assert.Equal(t, 42*time.Second, cfg.CacheTTL)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJSON(&Config{}, []string{"-config", bad}))
	})

	t.Run("invalid duration → error", func(t *testing.T) {
		bad := writeTempJSON(t, dir, "dur.json", map[string]any{"cache_ttl": true})
		require.Error(t, parseJSON(&Config{}, []string{"-c", bad}))
	})
}
