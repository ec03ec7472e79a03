package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/logger"
)

// NewRootCmd assembles the minigen command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "minigen",
		Short: "minigen - annotation-driven code generation for Go",
		Long: `minigen - annotation-driven code generation for Go.

minigen reads //mini: directives from doc comments, groups annotated
declarations into units according to a kind table, validates each unit
and writes the generated files next to the sources.

Available commands:
  generate - Generate code for annotated declarations
  check    - Verify generated files are up to date
  watch    - Regenerate whenever Go sources change
  kinds    - List the generation kinds in use
  config   - Manage minigen configuration
  version  - Show version information

Examples:
  minigen generate                       # Generate for ./...
  minigen check --diagnostics-format sarif > minigen.sarif
  minigen watch -v                       # Regenerate on save`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity, _ := cmd.Flags().GetCount("verbose")
			jsonOutput, _ := cmd.Flags().GetBool("json")
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				pterm.DisableColor()
			}
			if err := logger.Initialize(jsonOutput, verbosity); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
	}

	flags := root.PersistentFlags()
	flags.CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	flags.Bool("json", false, "JSON output for logs and command results")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("diagnostics-format", FormatPretty, "Diagnostics output: pretty, json, sarif")
	flags.StringP("dir", "C", "", "Run as if started in this directory")
	flags.String("config", "", "Use this config file instead of searching for minigen.toml")

	root.AddCommand(
		NewGenerateCmd(),
		NewCheckCmd(),
		NewWatchCmd(),
		NewKindsCmd(),
		NewConfigCmd(),
		NewVersionCmd(),
	)
	return root
}
