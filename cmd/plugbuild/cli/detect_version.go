package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/majorcontext/plugbuild/internal/source"
	"github.com/majorcontext/plugbuild/internal/versioning"
)

var detectSource string

var detectVersionCmd = &cobra.Command{
	Use:   "detect-version",
	Short: "Report how a plugin manages its version",
	Long: `Inspect a plugin source tree and print a JSON report describing where its
version comes from: a VERSION file, a hardcoded Version variable, or linker
flags at build time.

Fields: version_source (file, hardcoded, or ldflags), version_file,
current_version, version_package, and recommendation. Absent values are null.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := source.Open(detectSource)
		if err != nil {
			return err
		}
		out, err := versioning.Detect(tree).JSON()
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectVersionCmd)
	detectVersionCmd.Flags().StringVar(&detectSource, "source", ".", "plugin source directory")
}
