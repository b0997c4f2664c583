package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
)

func TestLoadFile_Missing(t *testing.T) {
	home := t.TempDir()
	cfg, err := LoadFile(filepath.Join(home, "nope.toml"), home)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "chatmap", "chatmap.db"), cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, chatmap.DefaultOptions(), cfg.Options())
}

func TestLoadFile_Overrides(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	body := `
export_root = "~/exports"
db_path = "/tmp/maps.db"
log_level = "debug"
ignore = ["Waiting for this message", "Missed voice call"]

[include]
photos = true
videos = false
audios = false
text = true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFile(path, home)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "exports"), cfg.ExportRoot)
	assert.Equal(t, "/tmp/maps.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:8088", cfg.Addr)
	assert.Len(t, cfg.Ignore, 2)
	assert.Equal(t, chatmap.Options{IncludePhotos: true, IncludeText: true}, cfg.Options())
}

func TestLoadFile_Invalid(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte("db_path = [\n"), 0o644))
	_, err := LoadFile(path, home)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("max_input_bytes = 0\n"), 0o644))
	_, err = LoadFile(path, home)
	assert.ErrorContains(t, err, "max_input_bytes")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`addr = ":9999"`), 0o644))
	t.Setenv(EnvPath, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
}
