package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "£", cfg.CurrencySymbol)
	assert.NotEmpty(t, cfg.LogFile)
	assert.NotNil(t, cfg.Headers)
	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
base_url: https://integrations.example.com/
sync_interval: 45s
request_timeout: 5s
currency_symbol: "$"
log_file: /tmp/opsdash-test.log
headers:
  X-Api-Key: secret
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "https://integrations.example.com", cfg.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 45*time.Second, cfg.SyncInterval)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "$", cfg.CurrencySymbol)
	assert.Equal(t, "/tmp/opsdash-test.log", cfg.LogFile)
	// viper lowercases map keys; header names are case-insensitive anyway
	assert.Equal(t, "secret", cfg.Headers["x-api-key"])
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("base_url: http://backend:9000\n"), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.BaseURL)
	assert.Equal(t, DefaultSyncInterval, cfg.SyncInterval)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultCurrencySymbol, cfg.CurrencySymbol)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("base_url: http://backend:9000\n"), 0o644))

	t.Setenv("OPSDASH_BASE_URL", "http://override:1234")
	t.Setenv("OPSDASH_SYNC_INTERVAL", "1m")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://override:1234", cfg.BaseURL)
	assert.Equal(t, time.Minute, cfg.SyncInterval)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("base_url: [unclosed\n"), 0o644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind_Explicit(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1\n"), 0o644))

	found, err := Find(configPath)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)

	_, err = Find(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind_WalksUpToGitRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	configPath := filepath.Join(root, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1\n"), 0o644))

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	chdir(t, nested)

	found, err := Find("")
	require.NoError(t, err)

	// Resolve symlinks (macOS /var -> /private/var)
	want, _ := filepath.EvalSymlinks(configPath)
	got, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, want, got)
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	chdir(t, dir)
	t.Setenv("HOME", dir)
	t.Setenv("OPSDASH_BASE_URL", "http://env-only:8000")

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "http://env-only:8000", cfg.BaseURL)
	assert.Equal(t, DefaultSyncInterval, cfg.SyncInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"future version", func(c *Config) { c.Version = 99 }, "from the future"},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, "base_url is not set"},
		{"ftp scheme", func(c *Config) { c.BaseURL = "ftp://host" }, "must use http or https"},
		{"no host", func(c *Config) { c.BaseURL = "http://" }, "has no host"},
		{"interval too short", func(c *Config) { c.SyncInterval = 100 * time.Millisecond }, "too short"},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "can't be negative"},
		{"zero timeout allowed", func(c *Config) { c.RequestTimeout = 0 }, ""},
		{"bad header name", func(c *Config) { c.Headers = map[string]string{"bad name": "x"} }, "Invalid header name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}

func TestWriteThenLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", ConfigFileName)

	cfg := DefaultConfig()
	cfg.BaseURL = "http://written:8000"
	cfg.SyncInterval = 15 * time.Second
	cfg.RequestTimeout = 0

	require.NoError(t, Write(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# opsdash configuration")
	assert.Contains(t, string(data), "sync_interval: 15s")
	assert.NotContains(t, string(data), "log_file", "default log file is not written")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://written:8000", loaded.BaseURL)
	assert.Equal(t, 15*time.Second, loaded.SyncInterval)
	assert.Equal(t, time.Duration(0), loaded.RequestTimeout)
}
