package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "detect", cfg.Mode)
	assert.Equal(t, 0.10, cfg.Detector.ThresholdPercent)
	assert.Equal(t, int64(500), cfg.Detector.MaxAgeMS)
	assert.Equal(t, int64(3000), cfg.Detector.StaleAgeMS)
	assert.Equal(t, int64(1000), cfg.Detector.TickIntervalMS)
	assert.Equal(t, 1_000_000.0, cfg.Detector.MaxReasonablePrice)
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "headless"
log_level = "debug"

[detector]
threshold_percent = 0.25
max_age_ms = 750

[redis]
addr = "localhost:6379"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "headless", cfg.Mode)
	assert.Equal(t, 0.25, cfg.Detector.ThresholdPercent)
	assert.Equal(t, int64(750), cfg.Detector.MaxAgeMS)
	assert.Equal(t, int64(3000), cfg.Detector.StaleAgeMS, "unset fields keep defaults")
	assert.True(t, cfg.RedisEnabled())
	assert.False(t, cfg.PostgresEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverridesWinOverTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[detector]
threshold_percent = 0.25
`), 0o644))

	t.Setenv("ARBOT_DETECTOR_THRESHOLD_PERCENT", "0.5")
	t.Setenv("ARBOT_MODE", "headless")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Detector.ThresholdPercent)
	assert.Equal(t, "headless", cfg.Mode)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "replay"
	cfg.Detector.MaxAgeMS = 0
	cfg.Binance.DepthLevels = 7

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "max_age_ms")
	assert.Contains(t, err.Error(), "depth_levels")
}

func TestValidateTelegramRequirements(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "token"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram_chat_id")

	cfg.Notify.TelegramChatID = "42"
	assert.NoError(t, cfg.Validate())
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.Notify.TelegramToken = "token"

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	assert.Equal(t, "hunter2", cfg.Redis.Password, "original must not change")
	assert.Equal(t, "", red.Postgres.Password, "empty fields stay empty")
}
