package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Runner.BaseDir)
	assert.Equal(t, 85, cfg.Runner.ImageQuality)
	assert.Equal(t, 0, cfg.Runner.ImageCap)
	assert.Equal(t, 25*time.Second, cfg.Fetch.PageTimeout)
	assert.Equal(t, 30*time.Second, cfg.Fetch.DocumentTimeout)
	assert.Equal(t, time.Hour, cfg.Tasks.TTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BASE_DIR", "/tmp/research")
	t.Setenv("IMAGE_QUALITY", "70")
	t.Setenv("IMAGE_CAP", "5")
	t.Setenv("PAGE_TIMEOUT", "10s")
	t.Setenv("TASK_TTL", "30m")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/research", cfg.Runner.BaseDir)
	assert.Equal(t, 70, cfg.Runner.ImageQuality)
	assert.Equal(t, 5, cfg.Runner.ImageCap)
	assert.Equal(t, 10*time.Second, cfg.Fetch.PageTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Tasks.TTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("PAGE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25*time.Second, cfg.Fetch.PageTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "port"},
		{"missing base dir", func(c *Config) { c.Runner.BaseDir = "" }, "BASE_DIR"},
		{"quality too low", func(c *Config) { c.Runner.ImageQuality = 0 }, "IMAGE_QUALITY"},
		{"quality too high", func(c *Config) { c.Runner.ImageQuality = 101 }, "IMAGE_QUALITY"},
		{"negative cap", func(c *Config) { c.Runner.ImageCap = -1 }, "IMAGE_CAP"},
		{"zero ttl", func(c *Config) { c.Tasks.TTL = 0 }, "TASK_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
