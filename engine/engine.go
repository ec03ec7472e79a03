// Package engine is the host-agnostic core of minigen: it folds rounds of
// annotated declarations into generation units, validates units against
// their kind, renders the valid ones and hands artifacts to a sink.
//
// A host drives it with one ProcessRound call per round:
//
//	eng := engine.New(table, engine.Config{Reporter: rep, Sink: out})
//	for i, batch := range rounds {
//	    if _, err := eng.ProcessRound(batch, i == len(rounds)-1); err != nil {
//	        return err // protocol error, session is over
//	    }
//	}
package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/diag"
	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/logger"
)

// Sink persists artifacts. Writing the same identity with the same text
// twice must be harmless.
type Sink interface {
	Write(a Artifact) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Artifact) error

func (f SinkFunc) Write(a Artifact) error { return f(a) }

// Config wires an engine to its collaborators. Nil fields get no-op defaults.
type Config struct {
	Reporter diag.Reporter
	Sink     Sink
	Render   RenderOptions
}

// Stats counts what a session produced.
type Stats struct {
	Rounds    int
	Units     int
	Generated int
	Failed    int
	Faults    int
	Artifacts int
}

// Engine is the round entry point. It owns one session at a time.
type Engine struct {
	mu sync.Mutex

	table    *KindTable
	reporter diag.Reporter
	sink     Sink
	render   RenderOptions

	session *Session
	aborted bool
	stats   Stats
	log     *zap.SugaredLogger
}

// New creates an engine over a kind table.
func New(table *KindTable, cfg Config) *Engine {
	e := &Engine{
		table:    table,
		reporter: cfg.Reporter,
		sink:     cfg.Sink,
		render:   cfg.Render,
		log:      logger.ComponentLogger("engine"),
	}
	if e.reporter == nil {
		e.reporter = diag.NopReporter{}
	}
	if e.sink == nil {
		e.sink = SinkFunc(func(Artifact) error { return nil })
	}
	return e
}

// ProcessRound ingests one round, then validates and renders every unit that
// became ready. It returns whether the engine wants further rounds: true
// when the round was not final and a kind is reactive or units are pending.
//
// Validation failures are reported, not returned. The returned error is a
// protocol error (a round after the final one, re-entrant use, a call after
// Abort) and ends the session.
func (e *Engine) ProcessRound(decls []*decl.Declaration, final bool) (bool, error) {
	if !e.mu.TryLock() {
		return false, errors.WithStack(errors.ErrReentrantRound)
	}
	defer e.mu.Unlock()

	if e.aborted {
		return false, errors.WithStack(errors.ErrSessionAborted)
	}
	e.start()

	round, err := e.session.Ingest(decls, final)
	if err != nil {
		if errors.Is(err, errors.ErrOutOfOrderRound) {
			diag.Errorf(e.reporter, diag.OutOfOrderRound, decl.Location{}, "%v", err)
		}
		return false, err
	}
	e.stats.Rounds = round.Number

	for _, d := range round.Rejected {
		e.reporter.Report(d)
	}
	for _, u := range round.Ready {
		e.generate(u)
	}

	if final {
		e.stats.Units = len(e.session.units)
		e.log.Debugw("Session finished",
			logger.FieldSessionID, e.session.ID,
			logger.FieldRound, round.Number,
			logger.FieldUnits, e.stats.Units,
			logger.FieldArtifacts, e.stats.Artifacts)
		return false, nil
	}
	return e.table.Reactive() || e.session.Pending(), nil
}

// generate validates, renders and writes one ready unit. Failures stay local
// to the unit.
func (e *Engine) generate(u *Unit) {
	log := logger.ChildLogger(e.log, logger.FieldUnitKey, u.Key)

	res := Validate(u)
	if res.Fault != nil {
		u.halted = true
		e.stats.Faults++
		log.Errorw("Internal fault, unit halted", logger.FieldError, res.Fault)
		diag.ReportError(e.reporter, diag.InternalFault, u.Location(), "internal fault: %v", res.Fault).
			WithSubject(string(u.Key)).Emit()
		return
	}
	u.Sealed = true

	v, ok := res.Validated()
	if !ok {
		e.stats.Failed++
		for _, d := range res.Diagnostics {
			e.reporter.Report(d)
		}
		log.Debugw("Unit failed validation", logger.FieldErrors, len(res.Diagnostics))
		return
	}

	arts, err := Render(v, e.render)
	if err != nil {
		e.stats.Failed++
		diag.ReportError(e.reporter, diag.RenderFailed, u.Location(), "%v", err).WithSubject(string(u.Key)).Emit()
		return
	}

	if path, owner := e.session.claimPaths(u.Key, arts); path != "" {
		e.stats.Failed++
		diag.ReportError(e.reporter, diag.ArtifactCollision, u.Location(),
			"%s would write %s, already generated for %s", u.Key, path, owner).WithSubject(string(u.Key)).Emit()
		return
	}

	for _, a := range arts {
		if e.session.Written(a.ID) {
			continue
		}
		if err := e.sink.Write(a); err != nil {
			diag.ReportError(e.reporter, diag.WriteFailed, u.Location(), "write %s: %v", a.Path, err).WithSubject(a.ID).Emit()
			continue
		}
		e.session.markWritten(a)
		e.stats.Artifacts++
		log.Debugw("Artifact written", logger.FieldArtifact, a.ID, logger.FieldPath, a.Path)
	}
	e.stats.Generated++
}

// Abort discards the current session without rendering anything still
// pending. Later rounds fail with ErrSessionAborted.
func (e *Engine) Abort() error {
	if !e.mu.TryLock() {
		return errors.WithStack(errors.ErrReentrantRound)
	}
	defer e.mu.Unlock()
	if e.session != nil {
		e.log.Debugw("Session aborted", logger.FieldSessionID, e.session.ID)
	}
	e.session = nil
	e.aborted = true
	return nil
}

// start creates the session on first use. Callers hold mu.
func (e *Engine) start() *Session {
	if e.session == nil && !e.aborted {
		e.session = NewSession(e.table)
		e.log.Debugw("Session started", logger.FieldSessionID, e.session.ID)
	}
	return e.session
}

// SessionID returns the ID of the current session, starting it if no round
// has arrived yet. It is empty after Abort.
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s := e.start(); s != nil {
		return s.ID
	}
	return ""
}

// Session returns the current session, nil before the first round or after Abort.
func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Stats returns counters for the current session.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Table returns the engine's kind table.
func (e *Engine) Table() *KindTable {
	return e.table
}
