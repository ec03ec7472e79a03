package engine

import (
	"strings"

	"github.com/teranos/minigen/diag"
	"github.com/teranos/minigen/errors"
)

// Result is the outcome of validating a unit.
type Result struct {
	// Unit is a snapshot taken at validation time.
	Unit        *Unit
	Diagnostics []diag.Diagnostic
	// Fault is an internal invariant violation, never a user error.
	Fault error
}

// OK reports whether the unit may be rendered.
func (r Result) OK() bool {
	return r.Fault == nil && len(r.Diagnostics) == 0
}

// Validated returns the render token when the unit passed.
func (r Result) Validated() (Validated, bool) {
	if !r.OK() {
		return Validated{}, false
	}
	return Validated{unit: r.Unit}, true
}

// Validated is a unit that passed validation. Only Validate creates one, so
// renderers never see a unit with missing roles or duplicated singular roles.
type Validated struct {
	unit *Unit
}

// Unit returns the validated snapshot.
func (v Validated) Unit() *Unit { return v.unit }

// Validate checks a unit in order: uniqueness, shape (built-in constraints
// then kind rules, which only run on complete units), completeness, self
// reference. It never mutates the unit and returns diagnostics sorted, so
// repeated calls and different arrival orders give the same result.
//
// An incomplete unit is only expected after the final-round flush. Anything
// else is a caller bug reported as a Fault.
func Validate(u *Unit) Result {
	snap := u.snapshot()
	res := Result{Unit: snap}

	complete := snap.Complete()
	if !complete && !snap.Terminal {
		res.Fault = errors.AssertionFailedf("validate called on incomplete unit %s outside the final flush (missing %s)",
			snap.Key, strings.Join(snap.MissingRoles(), ", "))
		return res
	}

	var out []diag.Diagnostic
	out = append(out, uniqueness(snap)...)
	out = append(out, shapeDiagnostics(snap)...)
	if complete {
		for _, rule := range snap.Kind.Rules {
			out = append(out, rule.Check(snap)...)
		}
	} else {
		out = append(out, incompleteness(snap)...)
	}
	if snap.Kind.ForbidSelfReference {
		for _, m := range snap.members {
			if selfReference(snap, m.Decl) {
				out = append(out, diag.New(diag.SevError, diag.CyclicReference, m.Decl.Location,
					"%s references %s, the unit it belongs to", m.Decl.Name, snap.Anchor))
			}
		}
	}

	for i := range out {
		if out[i].Subject == "" {
			out[i].Subject = string(snap.Key)
		}
	}
	diag.SortDiagnostics(out)
	res.Diagnostics = out
	return res
}

func uniqueness(u *Unit) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, spec := range u.Kind.Roles {
		if spec.Many {
			continue
		}
		claimed := u.Role(spec.Name)
		if len(claimed) < 2 {
			continue
		}
		for _, d := range claimed {
			dg := diag.New(diag.SevError, diag.DuplicateRole, d.Location,
				"role %s of %s is singular but claimed by %d declarations", spec.Name, u.Key, len(claimed))
			for _, other := range claimed {
				if other.ID != d.ID {
					dg = dg.WithNote(other.Location, "also claimed by "+other.Name)
				}
			}
			out = append(out, dg)
		}
	}
	return out
}

func incompleteness(u *Unit) []diag.Diagnostic {
	missing := strings.Join(u.MissingRoles(), ", ")
	var out []diag.Diagnostic
	for _, m := range u.members {
		out = append(out, diag.New(diag.SevError, diag.IncompleteUnit, m.Decl.Location,
			"unit %s is incomplete: no declaration plays required role %s", u.Key, missing))
	}
	return out
}
