package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultScheduleURL, cfg.ScheduleURL)
	assert.Equal(t, 10*time.Minute, cfg.Freshness)
	assert.Equal(t, 18, cfg.GroupCount)
	assert.Equal(t, 23, cfg.DailyHour)
	assert.Equal(t, 35, cfg.WarningMinute)
	assert.NoError(t, cfg.Validate(false))
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "schedule_freshness: 5m\ngroup_count: 12\nport: \"9000\"\ntimezone: UTC\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	t.Setenv("GROUP_COUNT", "6")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("PING_PRIVILEGED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Freshness)
	assert.Equal(t, 6, cfg.GroupCount, "environment overrides file")
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.True(t, cfg.PingPrivileged)
	assert.Equal(t, "./users.json", cfg.UsersFile, "untouched keys keep defaults")
	assert.NoError(t, cfg.Validate(true))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(true), "token required for the bot")

	cfg = Default()
	cfg.Freshness = 0
	cfg.GroupCount = -1
	cfg.DailyHour = 24
	cfg.WarningMinute = 60
	cfg.Timezone = "Mars/Olympus"
	err := cfg.Validate(false)
	require.Error(t, err)
	for _, want := range []string{"schedule_freshness", "group_count", "daily_hour", "warning_minute", "Mars/Olympus"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Kyiv", loc.String())
}
