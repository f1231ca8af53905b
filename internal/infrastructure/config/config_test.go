package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "security.events", cfg.Kafka.SecurityTopic)
	assert.Equal(t, MedianSourceStatic, cfg.Engine.MedianSource)
	assert.Len(t, cfg.Engine.Zones, 4)
	assert.Equal(t, 200.0, cfg.Engine.Zones["DELIVERY_ZONE"].RadiusMeters)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
environment: production
server:
  port: 9000
redis:
  enabled: true
  passport_ttl: 1m
engine:
  hos_region: EU
  median_source: randomized
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("SCM_SERVER_PORT", "9100")
	t.Setenv("SCM_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SCM_SERVER_READ_TIMEOUT", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Minute, cfg.Redis.PassportTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "EU", cfg.Engine.HOSRegion)
	assert.Equal(t, MedianSourceRandomized, cfg.Engine.MedianSource)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative ttl", func(c *Config) { c.Redis.PassportTTL = -time.Second }, "passport_ttl"},
		{"kafka without brokers", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		}, "kafka.brokers"},
		{"zero radius zone", func(c *Config) {
			c.Engine.Zones["DOCK"] = Zone{CenterLat: 1, CenterLon: 1}
		}, "engine.zones.DOCK"},
		{"unknown median source", func(c *Config) { c.Engine.MedianSource = "oracle" }, "median_source"},
		{"sampling above one", func(c *Config) { c.Telemetry.SamplingRate = 1.5 }, "sampling_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
