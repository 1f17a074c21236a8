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
	t.Setenv("EDGE_NODE_NAME", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("EDGE_TICK_INTERVAL", "")
	t.Setenv("EDGE_SIGNER_COUNT", "")

	cfg := Load()
	assert.Equal(t, "edge-node", cfg.NodeName)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, 3, cfg.SignerCount)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EDGE_NODE_NAME", "relay-7")
	t.Setenv("EDGE_TICK_INTERVAL", "500ms")
	t.Setenv("EDGE_SIGNER_COUNT", "5")
	t.Setenv("EDGE_SERVER_URL", "ws://edge.example:9090/ws")
	t.Setenv("EDGE_REDIS_ADDR", "localhost:6379")

	cfg := Load()
	assert.Equal(t, "relay-7", cfg.NodeName)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 5, cfg.SignerCount)
	assert.Equal(t, "ws://edge.example:9090/ws", cfg.EdgeURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("EDGE_TICK_INTERVAL", "not-a-duration")
	t.Setenv("EDGE_SIGNER_COUNT", "-2")

	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, 3, cfg.SignerCount)
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	profile := `
name: edge-eu
transport:
  mode: websocket
  url: ws://edge.example:9090/ws
journal:
  path: /var/lib/edge/journal.db
telemetry:
  enabled: true
  endpoint: otel.example:4317
tick_interval: 3s
signer_count: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile_edge-eu.yaml"), []byte(profile), 0o600))

	p, err := LoadProfile(dir, "edge-eu")
	require.NoError(t, err)
	assert.Equal(t, "edge-eu", p.Name)
	assert.Equal(t, "websocket", p.Transport.Mode)
	assert.Equal(t, "ws://edge.example:9090/ws", p.Transport.URL)
	assert.Equal(t, "/var/lib/edge/journal.db", p.Journal.Path)
	assert.True(t, p.Telemetry.Enabled)
	assert.Equal(t, 3*time.Second, time.Duration(p.TickInterval))
	assert.Equal(t, 2, p.SignerCount)
}

func TestLoadProfileMissing(t *testing.T) {
	_, err := LoadProfile(t.TempDir(), "nope")
	require.Error(t, err)
}

func TestLoadProfileInvalidTransport(t *testing.T) {
	dir := t.TempDir()
	profile := `
name: bad
transport:
  mode: websocket
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile_bad.yaml"), []byte(profile), 0o600))

	_, err := LoadProfile(dir, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a url")
}

func TestDefaultProfileValidates(t *testing.T) {
	require.NoError(t, DefaultProfile().Validate())
}
