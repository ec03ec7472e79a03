// Package commands implements the minigen CLI.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/minigen/config"
	"github.com/teranos/minigen/diag"
	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/host"
	"github.com/teranos/minigen/kinds"
	"github.com/teranos/minigen/logger"
)

// ErrReported is returned when generation reported ERROR diagnostics. The
// diagnostics have been printed already; main only sets the exit code.
var ErrReported = errors.New("generation reported errors")

// project is a loaded configuration plus the kind table it selects.
type project struct {
	dir   string
	cfg   *config.Config
	table *engine.KindTable
}

// loadProject resolves --dir and --config, validates the configuration and
// builds the kind table.
func loadProject(cmd *cobra.Command) (*project, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get working directory")
		}
		dir = wd
	}

	cfg, err := loadConfig(cmd, dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	logger.SetTheme(cfg.GetLogTheme())

	table, err := kinds.Table(cfg.Kinds.Builtin, cfg.TablePaths())
	if err != nil {
		return nil, err
	}
	logger.Debugw("Project loaded",
		logger.FieldPath, cfg.Path,
		logger.FieldCount, table.Len())
	return &project{dir: dir, cfg: cfg, table: table}, nil
}

func loadConfig(cmd *cobra.Command, dir string) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load(dir)
}

func (p *project) scanner() *host.Scanner {
	s := host.NewScanner(p.dir)
	s.Tags = p.cfg.Host.Tags
	s.Tests = p.cfg.Host.Tests
	s.Jobs = p.cfg.Host.Jobs
	return s
}

// newEngine returns the per-run engine factory; each run gets a fresh
// session writing to out.
func (p *project) newEngine(out engine.Sink) func(diag.Reporter) *engine.Engine {
	return func(r diag.Reporter) *engine.Engine {
		return engine.New(p.table, engine.Config{Reporter: r, Sink: out, Render: p.cfg.RenderOptions()})
	}
}

// generate runs one session into out and prints its diagnostics. It
// returns ErrReported alongside the summary when ERROR diagnostics were
// reported.
func (p *project) generate(ctx context.Context, cmd *cobra.Command, out engine.Sink, patterns []string) (*host.Summary, error) {
	mode, err := host.ParseRoundMode(p.cfg.Host.Rounds)
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(0)
	drv := host.NewDriver(p.scanner(), mode, diag.NewDedupReporter(diag.BagReporter{Bag: bag}))

	summary, err := drv.Run(ctx, p.newEngine(out), patterns)
	if err != nil {
		return nil, err
	}

	bag.Sort()
	if err := printDiagnostics(cmd, bag.Items(), p.dir); err != nil {
		return nil, err
	}
	if !summary.OK() {
		return summary, ErrReported
	}
	return summary, nil
}

// status prints a progress line to stderr so stdout stays clean for
// streamed artifacts and machine-readable diagnostics.
func status(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

// shows reports whether the -v count enables an output category.
func shows(cmd *cobra.Command, category logger.OutputCategory) bool {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	return logger.ShouldOutput(verbosity, category)
}
