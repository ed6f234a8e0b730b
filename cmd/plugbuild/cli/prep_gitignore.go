package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/majorcontext/plugbuild/internal/config"
	"github.com/majorcontext/plugbuild/internal/ignorelist"
	"github.com/majorcontext/plugbuild/internal/pipeline"
	"github.com/majorcontext/plugbuild/internal/ui"
)

var (
	prepSource     string
	prepPluginName string
	prepStdout     bool
)

var prepGitignoreCmd = &cobra.Command{
	Use:   "prep-gitignore",
	Short: "Add plugin build artifacts to .gitignore",
	Long: `Ensure .gitignore ignores the plugin binary, versioned release binaries,
and checksum files:

  packer-plugin-<name>
  packer-plugin-<name>_v*
  *_SHA256SUM

Existing content is preserved and only missing entries are appended, so the
command is safe to run repeatedly. Without --plugin-name the name comes from
the module path in go.mod.`,
	Args: cobra.NoArgs,
	RunE: runPrepGitignore,
}

func init() {
	rootCmd.AddCommand(prepGitignoreCmd)
	prepGitignoreCmd.Flags().StringVar(&prepSource, "source", ".", "plugin source directory")
	prepGitignoreCmd.Flags().StringVar(&prepPluginName, "plugin-name", "", "plugin name without the packer-plugin- prefix (default: from go.mod)")
	prepGitignoreCmd.Flags().BoolVar(&prepStdout, "stdout", false, "print the result instead of writing "+ignorelist.FileName)
}

func runPrepGitignore(cmd *cobra.Command, args []string) error {
	p, err := openProject(prepSource)
	if err != nil {
		return err
	}

	result := pipeline.PrepIgnoreList(p.tree, config.FirstSet(prepPluginName, p.settings.PluginName))
	if prepStdout {
		fmt.Fprint(cmd.OutOrStdout(), result.Content)
	}
	if result.Failed {
		return errors.New("could not auto-detect plugin name; provide --plugin-name")
	}
	for _, n := range result.Notices {
		ui.Notice(string(n))
	}

	if !prepStdout && result.Changed {
		path := filepath.Join(p.tree.Root(), ignorelist.FileName)
		if err := os.WriteFile(path, []byte(result.Content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", ignorelist.FileName, err)
		}
	}

	if jsonOut && !prepStdout {
		return printJSON(map[string]any{
			"plugin_name": result.PluginName,
			"changed":     result.Changed,
			"coverage":    result.Coverage,
		})
	}
	reportCoverage(result)
	return nil
}

func reportCoverage(result pipeline.IgnoreResult) {
	patterns := ignorelist.PatternsFor(result.PluginName)
	checks := []struct {
		pattern string
		ok      bool
	}{
		{patterns.Binary, result.Coverage.Binary},
		{patterns.Versioned, result.Coverage.Versioned},
		{patterns.Checksum, result.Coverage.Checksum},
	}
	for _, c := range checks {
		if !c.ok {
			ui.Warnf("%s is not ignored", c.pattern)
		}
	}
	switch {
	case !result.Coverage.Complete():
	case result.Changed && !prepStdout:
		ui.Successf("Updated %s for packer-plugin-%s", ignorelist.FileName, result.PluginName)
	case !result.Changed:
		ui.Successf("%s already ignores packer-plugin-%s artifacts", ignorelist.FileName, result.PluginName)
	}
}
