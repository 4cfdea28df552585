package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultsAndTypedGetters(t *testing.T) {
	cfg := New(WithDefaults(map[string]any{
		"client.base_url": "https://api.test/v2",
		"client.timeout":  "15s",
	}))

	require.Equal(t, "https://api.test/v2", cfg.GetString("client.base_url"))
	require.Equal(t, 15*time.Second, cfg.GetDurationD("client.timeout", time.Minute))
	require.Equal(t, time.Minute, cfg.GetDurationD("client.unset_timeout", time.Minute))
	require.Equal(t, "fallback", cfg.GetStringD("client.unset_key", "fallback"))
	require.True(t, cfg.GetBoolD("client.unset_flag", true))
}

func TestValidateRequired(t *testing.T) {
	cfg := New(WithDefaults(map[string]any{"client.base_url": "https://api.test"}))

	require.NoError(t, cfg.ValidateRequired("client.base_url"))

	err := cfg.ValidateRequired("client.base_url", "auth.token_url", "auth.client_id")
	require.Error(t, err)
	require.Contains(t, err.Error(), "auth.token_url")
	require.Contains(t, err.Error(), "auth.client_id")
	require.NotContains(t, err.Error(), "base_url")
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("APP_CLIENT_BASE_URL", "https://override.test")

	cfg := New(
		WithDefaults(map[string]any{"client.base_url": "https://default.test"}),
		WithEnv("APP"),
	)
	require.Equal(t, "https://override.test", cfg.GetString("client.base_url"))
}

func TestFileLoading(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  base_url: https://file.test\n"), 0o644))

	cfg := New(WithFile(path))
	require.Equal(t, "https://file.test", cfg.GetString("client.base_url"))
}

func TestMaskedSettingsRedactsCredentials(t *testing.T) {
	cfg := New(
		WithDefaults(map[string]any{
			"auth.password": "hunter2",
			"log.level":     "debug",
		}),
		WithSensitiveKeys("custom.secret"),
	)
	cfg.Set("custom.secret", "abc")

	masked := cfg.MaskedSettings()
	require.Equal(t, "***REDACTED***", masked["auth.password"])
	require.Equal(t, "***REDACTED***", masked["custom.secret"])
	require.NotEqual(t, "***REDACTED***", masked["log.level"])
}
