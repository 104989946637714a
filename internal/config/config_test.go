package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentunnel/opentunnel/internal/ingress"
)

const sampleYAML = `tunnel: abc-123
credentials-file: /root/.cloudflared/abc-123.json
ingress:
  - hostname: app.example.com
    service: http://localhost:3000
  - service: http_status:404
`

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "abc-123", cfg.Tunnel)
	assert.Equal(t, "/root/.cloudflared/abc-123.json", cfg.CredentialsFile)
	require.Len(t, cfg.Ingress, 2)
	assert.Equal(t, "app.example.com", cfg.Ingress[0].Hostname)
	assert.True(t, cfg.Ingress[1].IsCatchAll())
	assert.Equal(t, []string{"app.example.com"}, cfg.Hostnames())
}

func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadFromMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("tunnel: [unclosed"), 0o644))
	_, err := LoadFrom(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfigNotFound)
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")
	in := TunnelConfig{
		Tunnel:          "tun-1",
		CredentialsFile: "/tmp/tun-1.json",
		Ingress: []ingress.Rule{
			{Hostname: "a.example.com", Service: "http://localhost:3000"},
			{Service: "http_status:404"},
		},
	}
	require.NoError(t, SaveTo(path, in))

	out, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// No temp files left behind by the atomic write.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.yml", entries[0].Name())
}

func TestCatchAllOmitsHostnameKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := TunnelConfig{
		Tunnel: "t",
		Ingress: []ingress.Rule{
			{Service: "http_status:404"},
		},
	}
	require.NoError(t, SaveTo(path, cfg))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hostname", "catch-all rule must serialize without a hostname key")
}
