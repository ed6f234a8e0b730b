// Package toolchain decides which Go toolchain image builds a plugin.
package toolchain

import (
	"fmt"

	"github.com/majorcontext/plugbuild/internal/source"
)

// DefaultGoVersion is used when neither a flag nor .go-version pins one.
const DefaultGoVersion = "1.21"

// PinFile is the conventional Go version pin in a project root.
const PinFile = ".go-version"

// Source records how a toolchain version was chosen.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceFile     Source = "file"
	SourceDefault  Source = "default"
)

// Resolve picks the Go version: explicit > .go-version > DefaultGoVersion.
// An unreadable or empty pin file counts as absent.
func Resolve(tree *source.Tree, explicit string) (string, Source) {
	if explicit != "" {
		return explicit, SourceExplicit
	}
	if tree != nil {
		if pinned, ok := tree.ReadTrimmed(PinFile); ok {
			return pinned, SourceFile
		}
	}
	return DefaultGoVersion, SourceDefault
}

// Notice returns the informational line shown when the version came from
// the pin file, or "" otherwise.
func Notice(version string, src Source) string {
	if src != SourceFile {
		return ""
	}
	return fmt.Sprintf("ℹ Using Go %s from %s file", version, PinFile)
}

// Image returns the build image reference for a Go version. repo defaults
// to "golang".
func Image(repo, version string) string {
	if repo == "" {
		repo = "golang"
	}
	return repo + ":" + version
}
