package pipeline

import (
	"path"

	"github.com/majorcontext/plugbuild/internal/ignorelist"
	"github.com/majorcontext/plugbuild/internal/log"
	"github.com/majorcontext/plugbuild/internal/plugin"
	"github.com/majorcontext/plugbuild/internal/source"
)

// ErrorIgnoreContent is the ignore file produced when no plugin name can be
// determined.
const ErrorIgnoreContent = "# Error: Could not auto-detect plugin name. Please provide --plugin-name\n"

// IgnoreResult is the outcome of PrepIgnoreList.
type IgnoreResult struct {
	// Content is the full new ignore file.
	Content string
	// Changed reports whether Content differs from the existing file.
	Changed bool
	// Failed is set when no plugin name could be determined; Content is
	// then ErrorIgnoreContent.
	Failed     bool
	PluginName string
	Coverage   ignorelist.Coverage
	Notices    []Notice
}

// PrepIgnoreList computes the project's ignore file with entries for the
// plugin's build artifacts. Without an explicit name the plugin name comes
// from the last segment of the go.mod module path.
func PrepIgnoreList(tree *source.Tree, pluginName string) IgnoreResult {
	var result IgnoreResult

	if pluginName != "" {
		name, changed := plugin.Normalize(pluginName)
		if changed {
			result.Notices = append(result.Notices, Notice(plugin.NormalizationWarning("plugin-name", name)))
		}
		result.PluginName = name
	} else if module, ok := tree.ModulePath(); ok {
		name, changed := plugin.ExtractName(path.Base(module))
		if changed {
			result.Notices = append(result.Notices, Notice(plugin.NormalizationWarning("plugin-name (auto-detected)", name)))
		}
		result.PluginName = name
	}

	if result.PluginName == "" {
		log.Debug("could not determine plugin name for ignore file", "root", tree.Root())
		result.Failed = true
		result.Content = ErrorIgnoreContent
		result.Changed = true
		return result
	}

	existing, _ := tree.ReadString(ignorelist.FileName)
	warnings := make([]string, len(result.Notices))
	for i, n := range result.Notices {
		warnings[i] = string(n)
	}
	result.Content = ignorelist.Update(existing, result.PluginName, warnings)
	result.Changed = result.Content != existing
	result.Coverage = ignorelist.Covers(result.Content, result.PluginName)
	return result
}
