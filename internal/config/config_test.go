package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEVBANK_CONFIG", "")
	t.Setenv("DEVBANK_DB_PATH", "")
	t.Setenv("DEVBANK_HTTP_ADDR", "")
	t.Setenv("DEVBANK_LOG_LEVEL", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, "", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("DEVBANK_DB_PATH", "")
	t.Setenv("DEVBANK_HTTP_ADDR", "")
	t.Setenv("DEVBANK_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "devbank.yaml")
	data := "db_path: /tmp/kb.db\nhttp_addr: \":8099\"\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kb.db", cfg.DBPath)
	assert.Equal(t, ":8099", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devbank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: /tmp/file.db\n"), 0o644))

	t.Setenv("DEVBANK_DB_PATH", "/tmp/env.db")
	t.Setenv("DEVBANK_HTTP_ADDR", "")
	t.Setenv("DEVBANK_LOG_LEVEL", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	t.Setenv("DEVBANK_CONFIG", "")
	t.Setenv("DEVBANK_DB_PATH", "")
	t.Setenv("DEVBANK_HTTP_ADDR", "")
	t.Setenv("DEVBANK_LOG_LEVEL", "loud")

	_, err := Load("")
	assert.Error(t, err)
}
