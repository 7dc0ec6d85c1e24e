package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.resolvePaths())
	assert.NoError(t, cfg.validate())
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Contacts.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Portal.CacheTTL)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ZVG_SERVER_PORT", "9090")
	t.Setenv("ZVG_CONTACTS_BACKEND", "sqlite")
	t.Setenv("ZVG_PORTAL_CACHE_TTL", "5m")
	t.Setenv("ZVG_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Contacts.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Portal.CacheTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadLegacyCacheTTL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ZVG_PORTAL_CACHE_TTL", "5m")
	t.Setenv("ZVG_CACHE_TTL", "1800")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Portal.CacheTTL,
		"seconds-valued ZVG_CACHE_TTL wins over the nested setting")
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: 9191\nportal:\n  requests_per_second: 2\ncontacts:\n  backend: memory\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, float64(2), cfg.Portal.RequestsPerSecond)
	assert.Equal(t, "memory", cfg.Contacts.Backend)
	// Untouched sections keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9191\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("ZVG_SERVER_PORT", "9292")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9292, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "zero read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }},
		{name: "cors without origins", mutate: func(c *Config) { c.Security.AllowedOrigins = nil }},
		{name: "portal rps zero", mutate: func(c *Config) { c.Portal.RequestsPerSecond = 0 }},
		{name: "negative cache ttl", mutate: func(c *Config) { c.Portal.CacheTTL = -time.Second }},
		{name: "unknown contacts backend", mutate: func(c *Config) { c.Contacts.Backend = "etcd" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.NotEmpty(t, cfg.Logging.FilePath)
}

func TestPathResolution(t *testing.T) {
	cfg := Default()
	cfg.Paths.ExecutableDir = "/opt/zvgcli"

	assert.Equal(t, filepath.Join("/opt/zvgcli", "data"), cfg.GetDataDir())
	assert.Equal(t, filepath.Join("/opt/zvgcli", "data", "contacts.json"), cfg.ContactsFilePath())
	assert.Equal(t, filepath.Join("/opt/zvgcli", "data", "contacts.db"), cfg.ContactsSQLitePath())

	cfg.Paths.DataDir = "/var/lib/zvgcli"
	assert.Equal(t, "/var/lib/zvgcli", cfg.GetDataDir())

	cfg.Contacts.FilePath = "/srv/contacts.json"
	assert.Equal(t, "/srv/contacts.json", cfg.ContactsFilePath())
}

func TestEnsureDirectories(t *testing.T) {
	cfg := Default()
	cfg.Paths.ExecutableDir = t.TempDir()

	require.NoError(t, cfg.EnsureDirectories())
	assert.DirExists(t, cfg.GetDataDir())
	assert.DirExists(t, cfg.GetLogsDir())
}
