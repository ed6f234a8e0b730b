package source

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadString(t *testing.T) {
	tree := New("", fstest.MapFS{
		"VERSION": {Data: []byte("1.2.3\n")},
		"EMPTY":   {Data: []byte("  \n")},
	})

	content, ok := tree.ReadString("VERSION")
	assert.True(t, ok)
	assert.Equal(t, "1.2.3\n", content)

	_, ok = tree.ReadString("missing")
	assert.False(t, ok)

	trimmed, ok := tree.ReadTrimmed("VERSION")
	assert.True(t, ok)
	assert.Equal(t, "1.2.3", trimmed)

	_, ok = tree.ReadTrimmed("EMPTY")
	assert.False(t, ok, "whitespace-only file should count as absent")
}

func TestReadStringDirectoryIsAbsent(t *testing.T) {
	tree := New("", fstest.MapFS{
		"version/version.go": {Data: []byte("package version\n")},
	})
	_, ok := tree.ReadString("version")
	assert.False(t, ok)
}

func TestModulePath(t *testing.T) {
	tree := New("", fstest.MapFS{
		"go.mod": {Data: []byte("// comment\nmodule github.com/user/packer-plugin-docker\n\ngo 1.21\n")},
	})
	path, ok := tree.ModulePath()
	assert.True(t, ok)
	assert.Equal(t, "github.com/user/packer-plugin-docker", path)

	_, ok = New("", fstest.MapFS{}).ModulePath()
	assert.False(t, ok)

	_, ok = New("", fstest.MapFS{"go.mod": {Data: []byte("go 1.21\n")}}).ModulePath()
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".go-version"), []byte("1.23.2\n"), 0644))

	tree, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, tree.Root())

	v, ok := tree.ReadTrimmed(".go-version")
	assert.True(t, ok)
	assert.Equal(t, "1.23.2", v)

	_, err = Open(filepath.Join(dir, ".go-version"))
	assert.Error(t, err)

	_, err = Open(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}
