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
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "America/Sao_Paulo", cfg.ESIC.ReferenceTimezone)
	assert.Equal(t, "random", cfg.ESIC.ProtocolStrategy)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
addr: ":9000"
kafka:
  brokers: ["a:9092"]
  poll_interval: 5s
esic:
  reference_timezone: UTC
  protocol_prefix: SIC
http:
  read_timeout: 20s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("KAFKA_BROKERS", "b:9092, c:9092")
	t.Setenv("TRANSPARENCY_ADDR", "")
	t.Setenv("HTTP_WRITE_TIMEOUT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, []string{"b:9092", "c:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Kafka.PollInterval)
	assert.Equal(t, "SIC", cfg.ESIC.ProtocolPrefix)
	assert.Equal(t, 20*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 45*time.Second, cfg.HTTP.WriteTimeout)
	assert.Zero(t, cfg.HTTP.IdleTimeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestValidate(t *testing.T) {
	t.Run("unknown timezone", func(t *testing.T) {
		cfg := Defaults()
		cfg.ESIC.ReferenceTimezone = "Mars/Olympus"
		assert.Error(t, cfg.Validate())
	})

	t.Run("redis strategy needs redis url", func(t *testing.T) {
		cfg := Defaults()
		cfg.ESIC.ProtocolStrategy = "redis"
		assert.Error(t, cfg.Validate())

		cfg.Redis.URL = "redis://localhost:6379/0"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown strategy", func(t *testing.T) {
		cfg := Defaults()
		cfg.ESIC.ProtocolStrategy = "sequential"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rate limit window required when enabled", func(t *testing.T) {
		cfg := Defaults()
		cfg.RateLimit.Window = 0
		assert.Error(t, cfg.Validate())

		cfg.RateLimit.PublicLimit = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("negative http timeout", func(t *testing.T) {
		cfg := Defaults()
		cfg.HTTP.WriteTimeout = -time.Second
		assert.Error(t, cfg.Validate())
	})
}
