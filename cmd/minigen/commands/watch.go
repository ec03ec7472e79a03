package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/host"
	"github.com/teranos/minigen/logger"
	"github.com/teranos/minigen/sink"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [patterns...]",
		Short: "Regenerate whenever Go sources change",
		Long: `Generate once, then watch the project for changes to .go files and
regenerate after edits settle (watch.debounce_ms). Changes to generated
files are ignored. Stop with Ctrl-C.

Examples:
  minigen watch
  minigen watch ./internal/...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			w, err := host.NewWatcher(p.dir, p.cfg.Debounce(), p.cfg.Generator.Header)
			if err != nil {
				return err
			}
			log := logger.ComponentLogger("watch")
			log.Infow("Watching for changes",
				logger.FieldPath, p.dir,
				"debounce_ms", p.cfg.Debounce().Milliseconds())

			return w.Run(cmd.Context(), func(ctx context.Context) error {
				err := runWriteContext(ctx, cmd, p, args)
				if errors.Is(err, ErrReported) {
					// Diagnostics are on screen; keep watching.
					return nil
				}
				return err
			})
		},
	}
}

func runWriteContext(ctx context.Context, cmd *cobra.Command, p *project, patterns []string) error {
	files := sink.NewFileSink()
	summary, err := p.generate(ctx, cmd, files, patterns)
	if summary != nil && len(files.Written()) > 0 {
		status(cmd, "✓ %d file(s) written", len(files.Written()))
	}
	return err
}
