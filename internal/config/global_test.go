package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGlobal(t *testing.T, content string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if content == "" {
		return
	}
	dir := filepath.Join(home, ".plugbuild")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))
}

func TestLoadGlobalDefaults(t *testing.T) {
	writeGlobal(t, "")

	cfg, err := LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, DefaultGlobalConfig(), cfg)
}

func TestLoadGlobalFile(t *testing.T) {
	writeGlobal(t, `
runtime: buildkit
images:
  go: mirror.local/golang
debug:
  retention_days: 3
`)

	cfg, err := LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, "buildkit", cfg.Runtime)
	assert.Equal(t, "mirror.local/golang", cfg.Images.Go)
	assert.Equal(t, "hashicorp/packer", cfg.Images.Packer, "unset keys keep defaults")
	assert.Equal(t, "alpine:latest", cfg.Images.Alpine)
	assert.Equal(t, 3, cfg.Debug.RetentionDays)
}

func TestLoadGlobalEnvOverridesFile(t *testing.T) {
	writeGlobal(t, "runtime: buildkit\nimages:\n  packer: mirror.local/packer\n")
	t.Setenv(EnvRuntime, "docker")
	t.Setenv(EnvPackerImage, "registry.example.com/packer")
	t.Setenv(EnvGoImage, "registry.example.com/golang")
	t.Setenv(EnvRetentionDays, "30")

	cfg, err := LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, "docker", cfg.Runtime)
	assert.Equal(t, "registry.example.com/packer", cfg.Images.Packer)
	assert.Equal(t, "registry.example.com/golang", cfg.Images.Go)
	assert.Equal(t, 30, cfg.Debug.RetentionDays)
}

func TestLoadGlobalErrors(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		writeGlobal(t, "runtime: [docker\n")
		_, err := LoadGlobal()
		assert.ErrorContains(t, err, "parsing")
	})
	t.Run("unknown runtime", func(t *testing.T) {
		writeGlobal(t, "runtime: podman\n")
		_, err := LoadGlobal()
		assert.ErrorContains(t, err, `invalid runtime "podman"`)
	})
}

func TestDebugDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".plugbuild", "debug"), DebugDir())
}
