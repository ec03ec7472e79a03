package host

import (
	"context"
	"time"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/diag"
	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/logger"
)

// RoundMode decides how scanned packages are split into rounds.
type RoundMode string

const (
	// RoundsPerPackage delivers one round per package in import path order.
	RoundsPerPackage RoundMode = "package"
	// RoundsSingle delivers everything in one final round.
	RoundsSingle RoundMode = "single"
)

// ParseRoundMode validates a mode name.
func ParseRoundMode(s string) (RoundMode, error) {
	switch RoundMode(s) {
	case RoundsPerPackage, RoundsSingle:
		return RoundMode(s), nil
	case "":
		return RoundsPerPackage, nil
	}
	return "", errors.WithHint(errors.Newf("unknown round mode %q", s), "use \"package\" or \"single\"")
}

// PlanRounds splits packages into rounds. There is always at least one
// round; the last one is the final round.
func PlanRounds(pkgs []*PackageDecls, mode RoundMode) [][]*decl.Declaration {
	if mode == RoundsSingle {
		var all []*decl.Declaration
		for _, p := range pkgs {
			all = append(all, p.Decls...)
		}
		return [][]*decl.Declaration{all}
	}
	rounds := make([][]*decl.Declaration, 0, len(pkgs))
	for _, p := range pkgs {
		rounds = append(rounds, p.Decls)
	}
	if len(rounds) == 0 {
		rounds = append(rounds, nil)
	}
	return rounds
}

// Summary describes one driver run.
type Summary struct {
	Packages     int
	Declarations int
	Rounds       int
	Stats        engine.Stats
	Errors       int
	Warnings     int
	Duration     time.Duration
}

// OK reports whether the run produced no error diagnostics.
func (s *Summary) OK() bool {
	return s.Errors == 0
}

// counter counts diagnostics on their way to the real reporter.
type counter struct {
	next     diag.Reporter
	errors   int
	warnings int
}

func (c *counter) Report(d diag.Diagnostic) {
	switch d.Severity {
	case diag.SevError:
		c.errors++
	case diag.SevWarning:
		c.warnings++
	}
	c.next.Report(d)
}

// Driver scans packages and feeds them to an engine.
type Driver struct {
	Scanner  *Scanner
	Mode     RoundMode
	Reporter diag.Reporter
}

// NewDriver creates a driver.
func NewDriver(scanner *Scanner, mode RoundMode, reporter diag.Reporter) *Driver {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Driver{Scanner: scanner, Mode: mode, Reporter: reporter}
}

// Run executes one generation session on a fresh engine built by newEngine,
// which receives the reporter diagnostics must go to.
func (d *Driver) Run(ctx context.Context, newEngine func(diag.Reporter) *engine.Engine, patterns []string) (*Summary, error) {
	start := time.Now()
	rep := &counter{next: d.Reporter}
	summary := &Summary{}

	pkgs, err := d.Scanner.Scan(ctx, patterns...)
	if err != nil {
		return nil, err
	}
	summary.Packages = len(pkgs)
	for _, p := range pkgs {
		summary.Declarations += len(p.Decls)
		for _, dg := range p.Diagnostics {
			rep.Report(dg)
		}
	}

	eng := newEngine(rep)
	ctx = logger.WithSessionID(logger.WithComponent(ctx, "host.driver"), eng.SessionID())
	log := logger.LoggerFromContext(ctx)
	rounds := PlanRounds(pkgs, d.Mode)
	for i, round := range rounds {
		if err := ctx.Err(); err != nil {
			_ = eng.Abort()
			return nil, errors.Wrap(err, "generation cancelled")
		}
		final := i == len(rounds)-1
		more, err := eng.ProcessRound(round, final)
		if err != nil {
			return nil, errors.Wrapf(err, "round %d", i+1)
		}
		log.Debugw("Round delivered",
			logger.FieldRound, i+1,
			logger.FieldFinal, final,
			logger.FieldCount, len(round),
			"continue", more)
	}

	summary.Rounds = len(rounds)
	summary.Stats = eng.Stats()
	summary.Errors = rep.errors
	summary.Warnings = rep.warnings
	summary.Duration = time.Since(start)

	log.Infow("Generation finished",
		logger.FieldCount, summary.Packages,
		logger.FieldUnits, summary.Stats.Units,
		logger.FieldArtifacts, summary.Stats.Artifacts,
		logger.FieldErrors, summary.Errors,
		logger.FieldDurationMS, summary.Duration.Milliseconds())
	return summary, nil
}
