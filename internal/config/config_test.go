package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rulebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules: policies/
format: markdown
max_depth: 64
redis:
  addr: localhost:6379
  key: tenant-1
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "policies/", cfg.Rules)
	assert.Equal(t, "data.json", cfg.Facts, "unset keys keep defaults")
	assert.Equal(t, "markdown", cfg.Format)
	assert.Equal(t, 64, cfg.MaxDepth)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "tenant-1", cfg.Redis.Key)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rulebook.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"continue_on_error": true, "server": {"port": 9000}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.ContinueOnError)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rulebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [unterminated\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
