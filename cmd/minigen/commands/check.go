package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/sink"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [patterns...]",
		Short: "Verify generated files are up to date",
		Long: `Run generation without writing and compare every file it would produce
with the one on disk. Exits non-zero when a file is missing, differs, or is
a generated file nothing produces any more.

Lines starting with a prefix listed in output.check_ignore are ignored
on both sides.

Examples:
  minigen check           # CI gate for the whole module
  minigen check ./api/... # One subtree`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			return runCheck(cmd, p, args)
		},
	}
}

func runCheck(cmd *cobra.Command, p *project, patterns []string) error {
	cs := sink.NewCheckSink(p.cfg.Output.CheckIgnore...)
	_, genErr := p.generate(cmd.Context(), cmd, cs, patterns)
	if genErr != nil && !errors.Is(genErr, ErrReported) {
		return genErr
	}
	if err := cs.Orphans(p.cfg.Generator.Header); err != nil {
		return err
	}

	res := cs.Result()
	if !res.UpToDate {
		for _, s := range res.Stale {
			status(cmd, "✗ %-8s %s", s.Reason, relative(p.dir, s.Path))
		}
		return res.Err()
	}
	status(cmd, "✓ %d generated file(s) up to date", res.Checked)
	return genErr
}

func relative(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
