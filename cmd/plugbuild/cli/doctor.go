package cli

import (
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/majorcontext/plugbuild/internal/config"
	"github.com/majorcontext/plugbuild/internal/container"
	"github.com/majorcontext/plugbuild/internal/doctor"
	"github.com/majorcontext/plugbuild/internal/source"
)

var (
	doctorSource     string
	doctorPluginName string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the build environment and a plugin project",
	Long: `Displays what plugbuild would do for a project without building it:

- plugbuild version and configuration
- which container runtime is reachable
- the module path, Go toolchain, and detected version source
- whether .gitignore covers the plugin's build artifacts`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringVar(&doctorSource, "source", ".", "plugin source directory")
	doctorCmd.Flags().StringVar(&doctorPluginName, "plugin-name", "", "plugin name without the packer-plugin- prefix (default: from go.mod)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	tree, err := source.Open(doctorSource)
	if err != nil {
		return err
	}

	reg := doctor.NewRegistry()
	reg.Register(&versionSection{})
	reg.Register(&doctor.RuntimeSection{
		Kind: container.RuntimeType(config.FirstSet(runtimeFlag, globalCfg.Runtime)),
	})
	reg.Register(&doctor.ProjectSection{Tree: tree, PluginName: doctorPluginName})

	if failed := reg.Write(cmd.OutOrStdout()); failed > 0 {
		return fmt.Errorf("%d diagnostic section(s) reported errors", failed)
	}
	return nil
}

// versionSection shows the tool version and effective global settings.
type versionSection struct{}

func (s *versionSection) Name() string { return "plugbuild" }

func (s *versionSection) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Version:\t%s\n", version)
	fmt.Fprintf(tw, "Platform:\t%s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(tw, "Config:\t%s\n", config.GlobalConfigDir())
	fmt.Fprintf(tw, "Go image:\t%s\n", globalCfg.Images.Go)
	fmt.Fprintf(tw, "Packer image:\t%s\n", globalCfg.Images.Packer)
	return tw.Flush()
}
