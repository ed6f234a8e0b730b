package ignorelist

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/majorcontext/plugbuild/internal/plugin"
)

// Coverage reports which artifact kinds an ignore-list excludes.
type Coverage struct {
	Binary    bool `json:"binary"`
	Versioned bool `json:"versioned"`
	Checksum  bool `json:"checksum"`
}

// Complete reports whether every artifact kind is ignored.
func (c Coverage) Complete() bool {
	return c.Binary && c.Versioned && c.Checksum
}

// Covers evaluates content with git's matching rules against representative
// artifact names for the plugin. Unlike Missing, it honors patterns written
// differently (for example a broader glob or a later negation).
func Covers(content, name string) Coverage {
	var patterns []gitignore.Pattern
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	matcher := gitignore.NewMatcher(patterns)

	binary := plugin.BinaryName(name)
	ignored := func(file string) bool {
		return matcher.Match([]string{file}, false)
	}
	return Coverage{
		Binary:    ignored(binary),
		Versioned: ignored(binary + "_v1.0.0_x5.0_linux_amd64"),
		Checksum:  ignored(binary + "_v1.0.0_x5.0_linux_amd64_SHA256SUM"),
	}
}
