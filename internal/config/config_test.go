package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultStorageDir, cfg.Storage.Dir)
	assert.Equal(t, DefaultCollection, cfg.Storage.Collection)
	assert.Equal(t, DefaultTopK, cfg.Query.TopK)
	assert.Equal(t, DefaultTimeout, cfg.Provider.Timeout)
	assert.Contains(t, cfg.Loader.Extensions, ".md")
	assert.Contains(t, cfg.Loader.ExcludedDirs, "node_modules")
	assert.Contains(t, cfg.Loader.ExcludedDirs, ".git")

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty storage dir",
			mutate:  func(c *Config) { c.Storage.Dir = "" },
			wantErr: true,
		},
		{
			name:    "zero top_k",
			mutate:  func(c *Config) { c.Query.TopK = 0 },
			wantErr: true,
		},
		{
			name:    "negative top_k",
			mutate:  func(c *Config) { c.Query.TopK = -1 },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Provider.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "no extensions",
			mutate:  func(c *Config) { c.Loader.Extensions = nil },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateForIngest(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ValidateForIngest(), "ingest requires at least one root")

	cfg.Roots = []string{"/tmp/docs"}
	assert.NoError(t, cfg.ValidateForIngest())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
roots:
  - /srv/docs
  - /srv/docs/api
storage:
  dir: /var/lib/docquery
  collection: sdk_docs
query:
  top_k: 8
provider:
  name: local
  timeout: 10s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/srv/docs", "/srv/docs/api"}, cfg.Roots)
	assert.Equal(t, "/var/lib/docquery", cfg.Storage.Dir)
	assert.Equal(t, "sdk_docs", cfg.Storage.Collection)
	assert.Equal(t, 8, cfg.Query.TopK)
	assert.Equal(t, "local", cfg.Provider.Name)
	assert.Equal(t, 10*time.Second, cfg.Provider.Timeout)
	// Unset fields keep defaults.
	assert.Contains(t, cfg.Loader.Extensions, ".md")
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  dir: /from/file\n"), 0o600))

	t.Setenv("DOCQUERY_STORAGE_DIR", "/from/env")
	t.Setenv("DOCQUERY_QUERY_TOP_K", "3")
	t.Setenv("DOCQUERY_PROVIDER_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.Storage.Dir, "env beats file")
	assert.Equal(t, 3, cfg.Query.TopK)
	assert.Equal(t, "sk-test", cfg.Provider.APIKey)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, cfg.Query.TopK)
}

func TestEnvKeyToPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"storage_dir", "storage.dir"},
		{"query_top_k", "query.top_k"},
		{"provider_api_key", "provider.api_key"},
		{"loader_excluded_dirs", "loader.excluded_dirs"},
		{"roots", "roots"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, envKeyToPath(tt.in))
	}
}
