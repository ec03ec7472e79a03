package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/minigen/diag"
	"github.com/teranos/minigen/diag/diagfmt"
	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/version"
)

// Diagnostics output formats.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
	FormatSARIF  = "sarif"
)

const infoURI = "https://github.com/teranos/minigen"

// printDiagnostics writes items in the --diagnostics-format. Pretty output
// goes to stderr; JSON and SARIF go to stdout for tools to consume.
func printDiagnostics(cmd *cobra.Command, items []diag.Diagnostic, baseDir string) error {
	format, _ := cmd.Flags().GetString("diagnostics-format")
	switch format {
	case "", FormatPretty:
		if len(items) == 0 {
			return nil
		}
		w := cmd.ErrOrStderr()
		if err := diagfmt.Pretty(w, items, diagfmt.PrettyOpts{Color: pterm.PrintColor, BaseDir: baseDir}); err != nil {
			return err
		}
		status(cmd, "%s", diagfmt.Summary(items))
		return nil
	case FormatJSON:
		return diagfmt.JSON(cmd.OutOrStdout(), items)
	case FormatSARIF:
		return diagfmt.Sarif(cmd.OutOrStdout(), items, diagfmt.SarifRunMeta{
			ToolName:    "minigen",
			ToolVersion: version.Version,
			InfoURI:     infoURI,
		})
	}
	return errors.WithHint(
		errors.Newf("unsupported diagnostics format: %s", format),
		"supported: pretty, json, sarif")
}
