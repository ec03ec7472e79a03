package engine

import (
	"sort"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/diag"
	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/logger"
)

// Round is what one Ingest call did.
type Round struct {
	Number int
	Final  bool
	// Touched lists the units that gained a member, sorted.
	Touched []Key
	// Ready lists the units to validate and render now, sorted by key.
	Ready []*Unit
	// Rejected holds diagnostics for declarations that were not ingested.
	Rejected []diag.Diagnostic
}

// Ingest folds one round of declarations into the session.
//
// Re-reported identities are no-ops. Declarations with annotations outside
// the kind table are rejected with a warning. On the final round every unit
// not yet generated becomes ready; incomplete ones are marked terminal so the
// validator reports them instead of dropping them.
func (s *Session) Ingest(decls []*decl.Declaration, final bool) (*Round, error) {
	if s.finished {
		return nil, errors.Wrapf(errors.ErrOutOfOrderRound, "session %s received round %d", s.ID, s.round+1)
	}
	s.round++
	r := &Round{Number: s.round, Final: final}
	log := logger.ChildLogger(s.log, logger.FieldRound, s.round)

	incoming := make([]*decl.Declaration, 0, len(decls))
	for _, d := range decls {
		if err := d.Validate(); err != nil {
			var loc decl.Location
			if d != nil {
				loc = d.Location
			}
			r.Rejected = append(r.Rejected, diag.New(diag.SevError, diag.InvalidDecl, loc, "%v", err))
			continue
		}
		incoming = append(incoming, d)
	}
	sort.SliceStable(incoming, func(i, j int) bool { return incoming[i].ID < incoming[j].ID })

	touched := make(map[Key]bool)
	for _, d := range incoming {
		if _, seen := s.decls[d.ID]; seen || s.ignored[d.ID] {
			log.Debugw("Declaration re-reported, ignoring", logger.FieldDeclID, d.ID)
			continue
		}
		key, err := s.Assign(d)
		switch {
		case err == nil:
			touched[key] = true
			log.Debugw("Declaration assigned", logger.FieldDeclID, d.ID, logger.FieldUnitKey, key)
		case errors.Is(err, errors.ErrUnknownKind):
			s.ignored[d.ID] = true
			dg := diag.New(diag.SevWarning, diag.UnknownAnnotation, d.Location,
				"annotation %q on %s is not bound to any generation kind", d.Annotation.Name, d.Name)
			dg.Subject = d.ID
			r.Rejected = append(r.Rejected, dg)
		case errors.Is(err, ErrLateMember):
			s.ignored[d.ID] = true
			dg := diag.New(diag.SevError, diag.LateMember, d.Location,
				"%s arrived after unit %s was generated", d.Name, key)
			dg.Subject = string(key)
			r.Rejected = append(r.Rejected, dg)
		default:
			return nil, err
		}
	}

	for key := range touched {
		r.Touched = append(r.Touched, key)
	}
	sort.Slice(r.Touched, func(i, j int) bool { return r.Touched[i] < r.Touched[j] })

	for _, u := range s.Units() {
		if u.Sealed || u.halted {
			continue
		}
		switch {
		case final:
			u.Terminal = true
			r.Ready = append(r.Ready, u)
		case u.Kind.sealPolicy() == SealComplete && u.Complete():
			r.Ready = append(r.Ready, u)
		}
	}

	if final {
		s.finished = true
	}
	log.Debugw("Round ingested",
		logger.FieldFinal, final,
		logger.FieldCount, len(incoming),
		logger.FieldUnits, len(r.Ready))
	return r, nil
}
