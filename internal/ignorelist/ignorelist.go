// Package ignorelist maintains the .gitignore entries for Packer plugin
// build artifacts.
package ignorelist

import (
	"strings"

	"github.com/majorcontext/plugbuild/internal/plugin"
)

// FileName is the ignore-list maintained in the plugin source tree.
const FileName = ".gitignore"

// SectionHeader precedes the entries appended by Update.
const SectionHeader = "# Packer plugin build artifacts"

// ChecksumPattern matches the checksum files `packer plugins install`
// writes. It is shared by every plugin.
const ChecksumPattern = "*_SHA256SUM"

// Patterns are the ignore entries for one plugin.
type Patterns struct {
	Binary    string
	Versioned string
	Checksum  string
}

// PatternsFor derives the ignore entries for a plugin name.
func PatternsFor(name string) Patterns {
	binary := plugin.BinaryName(name)
	return Patterns{
		Binary:    binary,
		Versioned: binary + "_v*",
		Checksum:  ChecksumPattern,
	}
}

// All returns the patterns in the order they are appended.
func (p Patterns) All() []string {
	return []string{p.Binary, p.Versioned, p.Checksum}
}

// Missing returns the patterns absent from content, in append order. A
// pattern is present when some line equals it after trimming whitespace.
func (p Patterns) Missing(content string) []string {
	present := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		present[strings.TrimSpace(line)] = true
	}
	var missing []string
	for _, pattern := range p.All() {
		if !present[pattern] {
			missing = append(missing, pattern)
		}
	}
	return missing
}

// Update merges the plugin's artifact patterns into existing ignore-list
// content. When every pattern is already present the input is returned
// unchanged. Otherwise existing content is kept, warnings are recorded as
// comments, and only the missing patterns are appended under SectionHeader.
func Update(existing, name string, warnings []string) string {
	missing := PatternsFor(name).Missing(existing)
	if len(missing) == 0 {
		return existing
	}

	var b strings.Builder
	content := strings.TrimRight(existing, " \t\r\n")
	b.WriteString(content)
	if content != "" {
		b.WriteString("\n")
	}

	if len(warnings) > 0 {
		b.WriteString("\n")
		for _, w := range warnings {
			b.WriteString("# " + w + "\n")
		}
	}

	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(SectionHeader + "\n")
	for _, pattern := range missing {
		b.WriteString(pattern + "\n")
	}
	return b.String()
}
