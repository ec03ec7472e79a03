package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/minigen/config"
	"github.com/teranos/minigen/errors"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage minigen configuration",
		Long: `Display and manage minigen configuration.

Configuration sources (in order of precedence):
1. Environment variables (MINIGEN_* prefix, e.g. MINIGEN_OUTPUT_MODE)
2. Project config (nearest minigen.toml, searching up directories)
3. User config (minigen/minigen.toml in the user config directory)
4. Default values

Examples:
  minigen config show                 # Show effective configuration
  minigen config show --format json   # ... as JSON
  minigen config show --sources       # Where each value came from
  minigen config init                 # Write ./minigen.toml
  minigen config validate             # Validate current configuration`,
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigInitCmd(), newConfigValidateCmd())
	return cmd
}

func projectDir(cmd *cobra.Command) (string, error) {
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

func newConfigShowCmd() *cobra.Command {
	var format string
	var sources bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective minigen configuration from all sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, dir)
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			out := cmd.OutOrStdout()

			if sources {
				if shouldOutputJSON(cmd) {
					return outputJSON(cmd, cfg.Settings())
				}
				data := pterm.TableData{{"Key", "Value", "Source", "From"}}
				for _, s := range cfg.Settings() {
					data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
				}
				return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
			}

			if shouldOutputJSON(cmd) {
				format = "json"
			}
			switch format {
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return errors.Wrap(err, "failed to marshal config to JSON")
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return errors.Wrap(err, "failed to marshal config to YAML")
				}
				fmt.Fprintf(out, "# minigen configuration\n%s", data)
			case "toml":
				data, err := cfg.Marshal()
				if err != nil {
					return err
				}
				out.Write(data)
			default:
				return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml, json, yaml")
	cmd.Flags().BoolVar(&sources, "sources", false, "Show where each setting came from")
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default minigen.toml",
		Long: `Write a minigen.toml with every setting at its default. The file goes to
the project directory unless a path is given. An existing file is only
replaced with --force, and then kept as a .back1 backup.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(cmd)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.FileName)
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.WithHint(
					errors.Newf("%s already exists", path),
					"pass --force to replace it; the old file is kept as a backup")
			}
			if err := config.Default().WriteFile(path); err != nil {
				return err
			}
			status(cmd, "✓ Wrote %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing file")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate current configuration",
		Long:  "Validate the configuration and load every configured kind table",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			where := p.cfg.Path
			if where == "" {
				where = "defaults"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration is valid (%s, %d kinds)\n", where, p.table.Len())
			return nil
		},
	}
}
