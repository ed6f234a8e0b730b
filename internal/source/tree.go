// Package source provides read-only access to a plugin's source tree.
//
// A Tree pairs a host directory (what gets mounted into build containers)
// with an fs.FS view of it (what the version and toolchain probes read).
// Missing or unreadable files are reported as absent, never as errors.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/majorcontext/plugbuild/internal/log"
)

// Tree is a handle to a plugin source directory.
type Tree struct {
	root string
	fsys fs.FS
}

// Open returns a Tree rooted at dir. dir must exist and be a directory.
func Open(dir string) (*Tree, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving source directory %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", abs)
	}
	return &Tree{root: abs, fsys: os.DirFS(abs)}, nil
}

// New returns a Tree backed by fsys. root is the host path reported by Root
// and may be empty for trees that are never mounted (tests).
func New(root string, fsys fs.FS) *Tree {
	return &Tree{root: root, fsys: fsys}
}

// Root returns the host directory the tree was opened from.
func (t *Tree) Root() string {
	return t.root
}

// ReadString returns the contents of name, or ("", false) when the file is
// missing or cannot be read.
func (t *Tree) ReadString(name string) (string, bool) {
	data, err := fs.ReadFile(t.fsys, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Debug("treating unreadable source file as absent", "path", name, "error", err)
		}
		return "", false
	}
	return string(data), true
}

// ReadTrimmed is ReadString with surrounding whitespace removed. A file that
// is empty after trimming counts as absent.
func (t *Tree) ReadTrimmed(name string) (string, bool) {
	content, ok := t.ReadString(name)
	if !ok {
		return "", false
	}
	content = strings.TrimSpace(content)
	return content, content != ""
}

// ModulePath returns the module path declared in go.mod.
func (t *Tree) ModulePath() (string, bool) {
	content, ok := t.ReadString("go.mod")
	if !ok {
		return "", false
	}
	path := modfile.ModulePath([]byte(content))
	return path, path != ""
}
