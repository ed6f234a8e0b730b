package cli

import (
	"github.com/spf13/cobra"

	"github.com/majorcontext/plugbuild/internal/config"
	"github.com/majorcontext/plugbuild/internal/pipeline"
	"github.com/majorcontext/plugbuild/internal/ui"
)

var (
	bniOpts          buildFlags
	bniPackerVersion string
	bniOutput        string
)

var buildAndInstallCmd = &cobra.Command{
	Use:   "build-and-install",
	Short: "Build a plugin and install it in one step",
	Long: `Build a plugin (see 'plugbuild build') and install the resulting binary
(see 'plugbuild install') without writing the intermediate binary to the host.

Installed artifacts are copied to <output>/<install source>, for example
dist/plugins/github.com/owner/docker/packer-plugin-docker_v1.0.0_x5.0_linux_amd64.`,
	Example: `  plugbuild build-and-install --repository github.com/owner/packer-plugin-docker --version 1.0.0
  plugbuild build-and-install --use-version-file --packer-version 1.11.2`,
	Args: cobra.NoArgs,
	RunE: runBuildAndInstall,
}

func init() {
	rootCmd.AddCommand(buildAndInstallCmd)
	bniOpts.register(buildAndInstallCmd)
	buildAndInstallCmd.Flags().StringVar(&bniPackerVersion, "packer-version", "", "hashicorp/packer image tag (default: "+pipeline.DefaultPackerVersion+")")
	buildAndInstallCmd.Flags().StringVar(&bniOutput, "output", defaultPluginsDir, "directory to copy the installed layout into")
}

func runBuildAndInstall(cmd *cobra.Command, args []string) error {
	p, err := openProject(bniOpts.source)
	if err != nil {
		return err
	}
	in, err := bniOpts.inputs(p)
	if err != nil {
		return err
	}

	packerVersion := config.FirstSet(bniPackerVersion, p.settings.PackerVersion)
	build, install := newPipeline().BuildAndInstall(in, packerVersion)
	if install.Failed() {
		return rejected(install.Failure)
	}

	rt, err := newRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	ui.Infof("Building %s %s with Go %s and installing as %s",
		build.BinaryName, build.Version, build.GoVersion, install.InstallSource)
	if err := exportInstall(cmd, rt, install, bniOutput); err != nil {
		return err
	}
	return writeVersionFile(build, bniOpts.updateVersionFile, p.tree.Root())
}
