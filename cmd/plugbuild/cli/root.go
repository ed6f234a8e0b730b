// Package cli implements the plugbuild command-line interface using Cobra.
// Commands detect how a Packer plugin manages its version, build and install
// it inside containers, and keep its .gitignore current.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/majorcontext/plugbuild/internal/config"
	"github.com/majorcontext/plugbuild/internal/log"
	"github.com/majorcontext/plugbuild/internal/ui"
)

var (
	verbose     bool
	jsonOut     bool
	runtimeFlag string

	globalCfg = config.DefaultGlobalConfig()
)

var rootCmd = &cobra.Command{
	Use:   "plugbuild",
	Short: "Build and install Packer plugins in containers",
	Long: `plugbuild builds HashiCorp Packer plugins inside a Go toolchain container,
embedding the release version with linker flags, then installs the binary with
'packer plugins install' to produce the registry layout and checksum file.

Only Docker (or a BuildKit daemon) is needed on the host.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadGlobal()
		if err != nil {
			return err
		}
		globalCfg = cfg

		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSON:          jsonOut,
			DebugDir:      config.DebugDir(),
			RetentionDays: cfg.Debug.RetentionDays,
		}); err != nil {
			cmd.PrintErrf("Warning: failed to initialize debug logging: %v\n", err)
		}
		log.SetCommand(cmd.Name())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Close()
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel in-flight
// container work.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer log.Close()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.Error(err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&runtimeFlag, "runtime", "", "container runtime: auto, docker, or buildkit (env: "+config.EnvRuntime+")")
}
