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
	path := filepath.Join(t.TempDir(), "certzone.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: postgres://u:p@db:5432/certs
registry:
  url: http://egrul.local/
  timeout: 3s
  is_main: false
ingest:
  schema_path: /etc/certzone/zone.xsd
  log_dir: /var/log/certzone
jobs:
  workers: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/certs", cfg.DatabaseDSN)
	assert.Equal(t, "http://egrul.local/", cfg.RegistryURL)
	assert.Equal(t, 3*time.Second, cfg.RegistryTimeout)
	assert.False(t, cfg.RegistryIsMain)
	assert.Equal(t, "/etc/certzone/zone.xsd", cfg.SchemaPath)
	assert.Equal(t, "/var/log/certzone", cfg.LogDir)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.RedisTTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "registry:\n  url: http://egrul.local/\n")
	t.Setenv("CERTZONE_REGISTRY_URL", "http://other.local/")
	t.Setenv("CERTZONE_LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://other.local/", cfg.RegistryURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad registry url", body: "registry:\n  url: not a url\n"},
		{name: "zero workers", body: "jobs:\n  workers: 0\n"},
		{name: "unknown level", body: "log:\n  level: verbose\n"},
		{name: "bad redis addr", body: "redis:\n  addr: no-port\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
