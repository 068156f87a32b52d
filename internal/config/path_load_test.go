package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.conf"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "benedict", "config.conf"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "benedict", "config.conf"), resolved)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	clearEnvOverrides(t)
	path := filepath.Join(t.TempDir(), "missing.conf")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	clearEnvOverrides(t)
	path := filepath.Join(t.TempDir(), "config.conf")
	contents := `
{
  "ollama": {
    "model": "qwen2.5"
  },
  "session": {
    "output_dir": "scratch"
  }
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, "qwen2.5", loaded.Config.Ollama.Model)
	require.Equal(t, "scratch", loaded.Config.Session.OutputDir)
}

func TestLoadEnvironmentOverridesFileValues(t *testing.T) {
	clearEnvOverrides(t)
	path := filepath.Join(t.TempDir(), "config.conf")
	require.NoError(t, os.WriteFile(path, []byte(`{"ollama": {"model": "from-file"}}`), 0o600))

	t.Setenv("OLLAMA_MODEL", "from-env")
	t.Setenv("BENEDICT_OUTPUT_DIR", "env-sessions")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", loaded.Config.Ollama.Model)
	require.Equal(t, "env-sessions", loaded.Config.Session.OutputDir)
}

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OLLAMA_MODEL", "OLLAMA_BASE_URL", "OLLAMA_TIMEOUT_MS", "WHISPER_URL", "BENEDICT_OUTPUT_DIR", "BENEDICT_MODE"} {
		t.Setenv(key, "")
	}
}
