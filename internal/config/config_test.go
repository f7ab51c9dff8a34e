package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func writeEnv(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(body), 0o600))
	return dir
}

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := LoadAppConfig("app", "env", t.TempDir())
	assert.NilError(t, err)

	assert.Equal(t, cfg.StorageMode, StorageFile)
	assert.Equal(t, cfg.DataDir, "./data")
	assert.Equal(t, cfg.SlotKey, "tasks")
	assert.Equal(t, cfg.APIDelay, 300*time.Millisecond)
	assert.Equal(t, cfg.IDScheme, IDSchemeUUID)
	assert.Equal(t, cfg.IDPrefix, "")
	assert.Equal(t, cfg.LogLevel, "info")
	assert.Equal(t, cfg.OpenTimeout, 5*time.Second)
}

func TestLoadAppConfigFile(t *testing.T) {
	dir := writeEnv(t, "STORAGE_MODE=sqlite\nDATA_DIR=/var/lib/tasks\nAPI_DELAY=0s\nID_SCHEME=time\nID_PREFIX=t-\n")

	cfg, err := LoadAppConfig("app", "env", dir)
	assert.NilError(t, err)
	assert.Equal(t, cfg.StorageMode, StorageSQLite)
	assert.Equal(t, cfg.DataDir, "/var/lib/tasks")
	assert.Equal(t, cfg.APIDelay, time.Duration(0))
	assert.Equal(t, cfg.IDScheme, IDSchemeTime)
	assert.Equal(t, cfg.IDPrefix, "t-")
}

func TestLoadAppConfigEnvOverridesFile(t *testing.T) {
	dir := writeEnv(t, "STORAGE_MODE=sqlite\nLOG_LEVEL=warn\n")
	t.Setenv("STORAGE_MODE", "bbolt")

	cfg, err := LoadAppConfig("app", "env", dir)
	assert.NilError(t, err)
	assert.Equal(t, cfg.StorageMode, StorageBolt)
	assert.Equal(t, cfg.LogLevel, "warn")
}

func TestLoadAppConfigInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		body  string
		field string
	}{
		{name: "unknown storage", body: "STORAGE_MODE=postgres\n", field: "StorageMode"},
		{name: "empty slot key", body: "SLOT_KEY=\n", field: "SlotKey"},
		{name: "redis without url", body: "STORAGE_MODE=redis\nREDIS_URL=\n", field: "RedisURL"},
		{name: "unknown id scheme", body: "ID_SCHEME=snowflake\n", field: "IDScheme"},
		{name: "unknown log level", body: "LOG_LEVEL=trace\n", field: "LogLevel"},
		{name: "zero open timeout", body: "OPEN_TIMEOUT=0s\n", field: "OpenTimeout"},
		{name: "negative delay", body: "API_DELAY=-1s\n", field: "APIDelay"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadAppConfig("app", "env", writeEnv(t, tc.body))
			assert.Assert(t, err != nil)
			assert.Assert(t, is.Contains(err.Error(), tc.field))
		})
	}
}

func TestLoadAppConfigRedisURLKept(t *testing.T) {
	dir := writeEnv(t, "STORAGE_MODE=redis\nREDIS_URL=redis://cache:6379/2\n")
	cfg, err := LoadAppConfig("app", "env", dir)
	assert.NilError(t, err)
	assert.Equal(t, cfg.RedisURL, "redis://cache:6379/2")
}
