// Package plugin holds the naming rules for Packer plugins: lowercase
// normalization, short-name extraction, binary names, and the install source
// string `packer plugins install` expects.
package plugin

import (
	"fmt"
	"strings"
)

// Prefix is the conventional repository and binary prefix for Packer plugins.
const Prefix = "packer-plugin-"

// Normalize lowercases value and reports whether anything changed.
// It never prints; callers decide whether to surface a warning.
func Normalize(value string) (string, bool) {
	normalized := strings.ToLower(value)
	return normalized, normalized != value
}

// NormalizationWarning formats the user-facing notice for a parameter that
// was lowercased.
func NormalizationWarning(param, normalized string) string {
	return fmt.Sprintf("⚠ Warning: %s normalized to lowercase: %s", param, normalized)
}

// ExtractName derives a plugin's short name from a directory or repository
// name. The prefix check is case-insensitive, but exactly len(Prefix) bytes
// are removed from the original string before lowercasing.
func ExtractName(dirname string) (string, bool) {
	name := dirname
	if strings.HasPrefix(strings.ToLower(dirname), Prefix) {
		name = dirname[len(Prefix):]
	}
	return Normalize(name)
}

// NameFromRepository extracts the plugin name from the last segment of a
// repository path such as github.com/user/packer-plugin-docker.
func NameFromRepository(repository string) (string, bool) {
	dirname := lastSegment(repository)
	if dirname == "" {
		dirname = "plugin"
	}
	return ExtractName(dirname)
}

// StripPrefixFromSource removes Prefix from the final segment of a
// repository path. Packer registers plugins without the prefix, so
// github.com/user/packer-plugin-foo installs as github.com/user/foo.
// Earlier segments are never altered.
func StripPrefixFromSource(source string) string {
	parts := strings.Split(strings.TrimSuffix(source, "/"), "/")
	if len(parts) == 0 {
		return source
	}
	last := parts[len(parts)-1]
	if !strings.HasPrefix(last, Prefix) {
		return source
	}
	parts[len(parts)-1] = strings.TrimPrefix(last, Prefix)
	return strings.Join(parts, "/")
}

// BinaryName returns the executable name Packer expects for a plugin.
func BinaryName(name string) string {
	return Prefix + name
}

func lastSegment(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	return parts[len(parts)-1]
}
