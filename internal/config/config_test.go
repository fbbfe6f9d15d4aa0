package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 50, cfg.Pipeline.CannyLow)
	assert.Equal(t, 150, cfg.Pipeline.CannyHigh)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Server.Port)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":8081"
  mode: debug
pipeline:
  canny_low: 30
  canny_high: 90
  max_concurrent: 2
  queue_timeout: 5s
redis:
  enabled: true
  addr: "cache:6379"
  ttl: 1h
cors:
  allowed_origins: ["https://shop.example"]
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 30, cfg.Pipeline.CannyLow)
	assert.Equal(t, 90, cfg.Pipeline.CannyHigh)
	assert.Equal(t, int64(2), cfg.Pipeline.MaxConcurrent)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.QueueTimeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, []string{"https://shop.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched keys keep their defaults
	assert.Equal(t, int64(20*1024*1024), cfg.Upload.MaxSize)
	assert.Equal(t, 40_000_000, cfg.Upload.MaxPixels)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \":8081\"\n")
	t.Setenv("TRYON_SERVER_PORT", ":9090")
	t.Setenv("TRYON_PIPELINE_CANNY_HIGH", "200")
	t.Setenv("TRYON_REDIS_TTL", "10m")
	t.Setenv("TRYON_UPLOAD_MAX_PIXELS", "1000000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 200, cfg.Pipeline.CannyHigh)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 1_000_000, cfg.Upload.MaxPixels)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"thresholds reversed", "pipeline:\n  canny_low: 100\n  canny_high: 40\n"},
		{"threshold out of range", "pipeline:\n  canny_high: 300\n"},
		{"bad log level", "log:\n  level: verbose\n"},
		{"bad mode", "server:\n  mode: production\n"},
		{"no concurrency", "pipeline:\n  max_concurrent: 0\n"},
		{"negative pixel limit", "upload:\n  max_pixels: -1\n"},
		{"redis without addr", "redis:\n  enabled: true\n  addr: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed\n"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
