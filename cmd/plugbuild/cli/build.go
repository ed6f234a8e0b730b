package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/majorcontext/plugbuild/internal/config"
	"github.com/majorcontext/plugbuild/internal/log"
	"github.com/majorcontext/plugbuild/internal/pipeline"
	"github.com/majorcontext/plugbuild/internal/toolchain"
	"github.com/majorcontext/plugbuild/internal/ui"
)

// buildFlags are shared by build and build-and-install.
type buildFlags struct {
	source            string
	repository        string
	version           string
	pluginName        string
	useVersionFile    bool
	updateVersionFile bool
	goVersion         string
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", ".", "plugin source directory")
	cmd.Flags().StringVar(&f.repository, "repository", "", "module path, e.g. github.com/owner/packer-plugin-name (default: "+config.ProjectFile+" or origin remote)")
	cmd.Flags().StringVar(&f.version, "version", "", "release version to embed (MAJOR.MINOR.PATCH)")
	cmd.Flags().StringVar(&f.pluginName, "plugin-name", "", "plugin name without the packer-plugin- prefix (default: from repository)")
	cmd.Flags().BoolVar(&f.useVersionFile, "use-version-file", false, "take the version from version/VERSION or VERSION")
	cmd.Flags().BoolVar(&f.updateVersionFile, "update-version-file", false, "write the version into the detected VERSION file")
	cmd.Flags().StringVar(&f.goVersion, "go-version", "", "Go toolchain image tag (default: "+toolchain.PinFile+", then "+toolchain.DefaultGoVersion+")")
}

// inputs merges flags over the project settings.
func (f *buildFlags) inputs(p *project) (pipeline.BuildInputs, error) {
	repo, err := p.repository(f.repository)
	if err != nil {
		return pipeline.BuildInputs{}, err
	}
	return pipeline.BuildInputs{
		Source:            p.tree,
		Repository:        repo,
		Version:           f.version,
		PluginName:        config.FirstSet(f.pluginName, p.settings.PluginName),
		UseVersionFile:    f.useVersionFile || p.settings.UseVersionFile,
		UpdateVersionFile: f.updateVersionFile,
		GoVersion:         config.FirstSet(f.goVersion, p.settings.GoVersion),
	}, nil
}

// rejected reports inputs refused before any container work.
func rejected(failure string) error {
	return errors.New(failure)
}

// writeVersionFile mirrors --update-version-file onto the host tree after a
// successful build; the container only sees a copy of the source.
func writeVersionFile(result pipeline.BuildResult, update bool, root string) error {
	if !update || result.Report.VersionFile == "" {
		return nil
	}
	path := filepath.Join(root, filepath.FromSlash(result.Report.VersionFile))
	if err := os.WriteFile(path, []byte(result.Version+"\n"), 0644); err != nil {
		return fmt.Errorf("updating %s: %w", result.Report.VersionFile, err)
	}
	log.Debug("updated version file", "path", path, "version", result.Version)
	return nil
}

var (
	buildOpts   buildFlags
	buildOutput string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile a plugin in a Go toolchain container",
	Long: `Compile a Packer plugin with CGO disabled in a golang container, embedding
the release version with linker flags:

  -X <repository>/version.Version=<version> -X <repository>/version.VersionPrerelease=

The prerelease marker is always cleared so the binary does not report -dev.
The binary packer-plugin-<name> is written to --output.`,
	Example: `  plugbuild build --repository github.com/owner/packer-plugin-docker --version 1.0.0
  plugbuild build --use-version-file --output dist/`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildOpts.register(buildCmd)
	buildCmd.Flags().StringVar(&buildOutput, "output", ".", "directory to write the binary to")
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := openProject(buildOpts.source)
	if err != nil {
		return err
	}
	in, err := buildOpts.inputs(p)
	if err != nil {
		return err
	}

	result := newPipeline().Build(in)
	if result.Failed() {
		return rejected(result.Failure)
	}

	rt, err := newRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	ui.Infof("Building %s %s with Go %s", result.BinaryName, result.Version, result.GoVersion)
	if err := rt.Export(cmd.Context(), result.Plan, result.BinaryPath(), buildOutput); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	if err := writeVersionFile(result, buildOpts.updateVersionFile, p.tree.Root()); err != nil {
		return err
	}

	binary := filepath.Join(buildOutput, result.BinaryName)
	if jsonOut {
		return printJSON(map[string]string{
			"binary":      binary,
			"plugin_name": result.PluginName,
			"version":     result.Version,
			"go_version":  result.GoVersion,
		})
	}
	ui.Successf("Built %s", binary)
	return nil
}
