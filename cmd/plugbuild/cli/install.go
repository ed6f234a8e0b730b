package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/majorcontext/plugbuild/internal/config"
	"github.com/majorcontext/plugbuild/internal/container"
	"github.com/majorcontext/plugbuild/internal/pipeline"
	"github.com/majorcontext/plugbuild/internal/ui"
)

// Default host directory for installed plugin layouts.
const defaultPluginsDir = "dist/plugins"

var (
	installSrcDir        string
	installBinary        string
	installRepository    string
	installPluginName    string
	installPackerVersion string
	installOutput        string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install a built plugin with packer plugins install",
	Long: `Run 'packer plugins install --path' on a built plugin binary inside a
hashicorp/packer container and copy the resulting layout (versioned binary and
_SHA256SUM file) to <output>/<install source>.

The install source is the repository with the packer-plugin- prefix removed
from its last segment: github.com/owner/packer-plugin-docker installs as
github.com/owner/docker.`,
	Example: `  plugbuild install --binary ./packer-plugin-docker --repository github.com/owner/packer-plugin-docker`,
	Args:    cobra.NoArgs,
	RunE:    runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().StringVar(&installSrcDir, "source", ".", "plugin source directory (for "+config.ProjectFile+" and the origin remote)")
	installCmd.Flags().StringVar(&installBinary, "binary", "", "path to the built plugin binary")
	installCmd.Flags().StringVar(&installRepository, "repository", "", "module path (default: "+config.ProjectFile+" or origin remote)")
	installCmd.Flags().StringVar(&installPluginName, "plugin-name", "", "plugin name without the packer-plugin- prefix (default: from repository)")
	installCmd.Flags().StringVar(&installPackerVersion, "packer-version", "", "hashicorp/packer image tag (default: "+pipeline.DefaultPackerVersion+")")
	installCmd.Flags().StringVar(&installOutput, "output", defaultPluginsDir, "directory to copy the installed layout into")
	_ = installCmd.MarkFlagRequired("binary")
}

func runInstall(cmd *cobra.Command, args []string) error {
	binary, err := filepath.Abs(installBinary)
	if err != nil {
		return fmt.Errorf("resolving binary path: %w", err)
	}
	if info, err := os.Stat(binary); err != nil {
		return fmt.Errorf("binary: %w", err)
	} else if info.IsDir() {
		return fmt.Errorf("binary %s is a directory", binary)
	}

	p, err := openProject(installSrcDir)
	if err != nil {
		return err
	}
	repo, err := p.repository(installRepository)
	if err != nil {
		return err
	}

	result := newPipeline().Install(pipeline.InstallInputs{
		Binary:        container.HostFile(binary),
		Repository:    repo,
		PluginName:    config.FirstSet(installPluginName, p.settings.PluginName),
		PackerVersion: config.FirstSet(installPackerVersion, p.settings.PackerVersion),
	})

	rt, err := newRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	ui.Infof("Installing %s as %s", result.BinaryName, result.InstallSource)
	return exportInstall(cmd, rt, result, installOutput)
}

// exportInstall runs an install plan and copies its layout to the host.
func exportInstall(cmd *cobra.Command, rt container.Runtime, result pipeline.InstallResult, output string) error {
	dest := result.ArtifactsDir(output)
	if err := rt.Export(cmd.Context(), result.Plan, result.ArtifactsPath, dest); err != nil {
		return fmt.Errorf("install failed: %w", err)
	}

	if jsonOut {
		return printJSON(map[string]string{
			"install_source": result.InstallSource,
			"plugin_name":    result.PluginName,
			"artifacts":      dest,
		})
	}
	ui.Successf("Installed %s", result.InstallSource)
	ui.Detail(dest)
	return nil
}
