package n8nstatus

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points cwd and HOME at empty temp directories so resolution tests
// never pick up a real n8n install on the host.
func isolate(t *testing.T) {
	t.Helper()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	t.Setenv("HOME", t.TempDir())
	t.Setenv("N8N_DB_PATH", "")
}

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	return path
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveConfigFlagPathWins(t *testing.T) {
	isolate(t)
	t.Setenv("N8N_DB_PATH", touch(t, filepath.Join(t.TempDir(), "env.sqlite")))

	cfg, err := ResolveConfig("/explicit/path.sqlite", -1, discard())
	require.NoError(t, err)
	require.Equal(t, "/explicit/path.sqlite", cfg.DBPath)
	require.Equal(t, DefaultLimit, cfg.Limit)
}

func TestResolveConfigEnvBeforeConfigFile(t *testing.T) {
	isolate(t)
	envPath := touch(t, filepath.Join(t.TempDir(), "env.sqlite"))
	t.Setenv("N8N_DB_PATH", envPath)

	cfgPath := touch(t, filepath.Join(t.TempDir(), "cfg.sqlite"))
	require.NoError(t, os.WriteFile(configFileName,
		[]byte("[n8n-status]\ndb_path = "+cfgPath+"\n"), 0644))

	cfg, err := ResolveConfig("", -1, discard())
	require.NoError(t, err)
	require.Equal(t, envPath, cfg.DBPath)
}

func TestResolveConfigFromIniFile(t *testing.T) {
	isolate(t)
	dbPath := touch(t, filepath.Join(t.TempDir(), "from-config.sqlite"))
	require.NoError(t, os.WriteFile(configFileName,
		[]byte("[n8n-status]\ndb_path = "+dbPath+"\nlimit = 40\n"), 0644))

	cfg, err := ResolveConfig("", -1, discard())
	require.NoError(t, err)
	require.Equal(t, dbPath, cfg.DBPath)
	require.Equal(t, 40, cfg.Limit)

	// An explicit flag limit still beats the config file.
	cfg, err = ResolveConfig("", 3, discard())
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Limit)
}

func TestResolveConfigHomeConfigFile(t *testing.T) {
	isolate(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	dbPath := touch(t, filepath.Join(t.TempDir(), "home-config.sqlite"))
	require.NoError(t, os.WriteFile(filepath.Join(home, configFileName),
		[]byte("[n8n-status]\ndb_path = "+dbPath+"\n"), 0644))

	cfg, err := ResolveConfig("", -1, discard())
	require.NoError(t, err)
	require.Equal(t, dbPath, cfg.DBPath)
}

func TestResolveConfigProbesDefaultLocations(t *testing.T) {
	isolate(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	defaultPath := touch(t, filepath.Join(home, ".n8n", "database.sqlite"))

	cfg, err := ResolveConfig("", -1, discard())
	require.NoError(t, err)
	require.Equal(t, defaultPath, cfg.DBPath)

	// Current directory is probed after the home location.
	require.NoError(t, os.Remove(defaultPath))
	touch(t, "database.sqlite")
	cfg, err = ResolveConfig("", -1, discard())
	require.NoError(t, err)
	require.Equal(t, "database.sqlite", cfg.DBPath)
}

func TestResolveConfigNoDatabaseAnywhere(t *testing.T) {
	isolate(t)

	_, err := ResolveConfig("", -1, discard())
	require.Error(t, err)
	require.Contains(t, err.Error(), "--db-path")
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/someone")
	require.Equal(t, "/home/someone/.n8n/database.sqlite", expandHome("~/.n8n/database.sqlite"))
	require.Equal(t, "/absolute/path.sqlite", expandHome("/absolute/path.sqlite"))
}
