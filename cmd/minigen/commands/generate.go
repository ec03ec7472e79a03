package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/minigen/config"
	"github.com/teranos/minigen/logger"
	"github.com/teranos/minigen/sink"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "generate [patterns...]",
		Short: "Generate code for annotated declarations",
		Long: `Load the packages matching the patterns (default ./...), collect every
//mini: annotated declaration, and write the generated files next to the
sources they came from.

Files whose content has not changed are left untouched. With --stdout (or
output.mode = "stdout") nothing is written; each file is printed instead.

Examples:
  minigen generate                  # Whole module
  minigen generate ./internal/...   # One subtree
  minigen generate --stdout .       # Preview without writing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			mode := p.cfg.Output.Mode
			if toStdout {
				mode = config.ModeStdout
			}
			switch mode {
			case config.ModeCheck:
				return runCheck(cmd, p, args)
			case config.ModeStdout:
				_, err := p.generate(cmd.Context(), cmd, sink.NewStreamSink(cmd.OutOrStdout()), args)
				return err
			}
			return runWrite(cmd, p, args)
		},
	}
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print generated files instead of writing them")
	return cmd
}

func runWrite(cmd *cobra.Command, p *project, patterns []string) error {
	files := sink.NewFileSink()
	summary, err := p.generate(cmd.Context(), cmd, files, patterns)
	if shows(cmd, logger.OutputFiles) {
		for _, path := range files.Written() {
			status(cmd, "  wrote %s", relative(p.dir, path))
		}
	}
	if summary != nil {
		status(cmd, "✓ %d package(s), %d unit(s): %d file(s) written, %d unchanged (%dms)",
			summary.Packages, summary.Stats.Units, len(files.Written()), len(files.Unchanged()),
			summary.Duration.Milliseconds())
	}
	return err
}
