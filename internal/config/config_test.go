package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFileThenEnv(t *testing.T) {
	p := writeFile(t, `
db_path: /tmp/sc.db
user: alice
timezone: UTC
minimal_mode: true
flat_task_xp: 15
log:
  level: debug
sync:
  enabled: true
  dsn: postgres://localhost/sc
  debounce: 750ms
`)
	t.Setenv("STREAKCITY_USER", "bob")
	t.Setenv("STREAKCITY_SYNC_DEBOUNCE", "3s")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sc.db", cfg.DBPath)
	assert.Equal(t, "bob", cfg.User)
	assert.True(t, cfg.MinimalMode)
	assert.Equal(t, 15, cfg.FlatTaskXP)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Sync.Debounce)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bad := Default()
	bad.Sync.Enabled = true
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.Timezone = "Mars/Olympus"
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.User = "  "
	assert.Error(t, bad.Validate())
}

func TestDefaultSyncDebounce(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.Debounce)
	assert.Less(t, cfg.Sync.Debounce, time.Second)
}
