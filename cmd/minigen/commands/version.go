package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/minigen/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show minigen version information",
		Long:  `Display version, build time, commit hash, and platform information for the minigen binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if shouldOutputJSON(cmd) {
				return outputJSON(cmd, info)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, info.String())
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
			fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
			return nil
		},
	}
}
