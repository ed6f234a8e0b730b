package container

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestTarDirectoryRoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "main.go"), "package main\n")
	writeFile(t, filepath.Join(src, "version", "VERSION"), "1.0.0\n")
	writeFile(t, filepath.Join(src, ".git", "HEAD"), "ref: refs/heads/main\n")

	buf, err := tarDirectory(src)
	require.NoError(t, err)

	dest := t.TempDir()
	require.NoError(t, extractTar(buf, dest, false))

	got, err := os.ReadFile(filepath.Join(dest, "version", "VERSION"))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0\n", string(got))
	assert.FileExists(t, filepath.Join(dest, "main.go"))
	assert.NoDirExists(t, filepath.Join(dest, ".git"))
}

func TestExtractTarStripRoot(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "docker/", Typeflag: tar.TypeDir, Mode: 0755}))
	content := []byte("binary")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "docker/packer-plugin-docker_v1.0.0_x5.0_linux_amd64",
		Typeflag: tar.TypeReg,
		Mode:     0755,
		Size:     int64(len(content)),
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	dest := t.TempDir()
	require.NoError(t, extractTar(&buf, dest, true))

	info, err := os.Stat(filepath.Join(dest, "packer-plugin-docker_v1.0.0_x5.0_linux_amd64"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestExtractTarRejectsTraversal(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../escape", Typeflag: tar.TypeReg, Mode: 0644}))
	require.NoError(t, tw.Close())

	err := extractTar(&buf, t.TempDir(), false)
	assert.ErrorContains(t, err, "invalid path")
}

func TestTarFileAndReadSingleFile(t *testing.T) {
	buf, err := tarFile("packer-plugin-docker", []byte("ELF"), 0755)
	require.NoError(t, err)

	data, mode, err := readSingleFile(buf)
	require.NoError(t, err)
	assert.Equal(t, "ELF", string(data))
	assert.Equal(t, int64(0755), mode)
}

func TestReadSingleFileEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tar.NewWriter(&buf).Close())
	_, _, err := readSingleFile(&buf)
	assert.Error(t, err)
}
