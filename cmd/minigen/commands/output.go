package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// shouldOutputJSON reports whether the global --json flag is set.
func shouldOutputJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// outputJSON prints v as indented JSON on stdout.
func outputJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
