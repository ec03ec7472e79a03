package engine

import (
	"fmt"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/diag"
)

// Rule is a kind-specific validation check. Rules must be pure: the same
// unit always yields the same diagnostics.
type Rule interface {
	Name() string
	Check(u *Unit) []diag.Diagnostic
}

// RuleFunc adapts a function to Rule.
type RuleFunc struct {
	RuleName string
	Fn       func(u *Unit) []diag.Diagnostic
}

func (r RuleFunc) Name() string { return r.RuleName }
func (r RuleFunc) Check(u *Unit) []diag.Diagnostic { return r.Fn(u) }

// MemberRule builds a rule that checks every member of one role in isolation.
// check returns a message for a violation, or "" when the member is fine.
func MemberRule(name, role string, code diag.Code, check func(u *Unit, d *decl.Declaration) string) Rule {
	return RuleFunc{
		RuleName: name,
		Fn: func(u *Unit) []diag.Diagnostic {
			var out []diag.Diagnostic
			for _, d := range u.Role(role) {
				if msg := check(u, d); msg != "" {
					out = append(out, diag.New(diag.SevError, code, d.Location, "%s", msg))
				}
			}
			return out
		},
	}
}

// shapeDiagnostics applies the built-in per-role shape constraints.
func shapeDiagnostics(u *Unit) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, m := range u.members {
		spec, ok := u.Kind.Role(m.Role)
		if !ok {
			continue
		}
		d := m.Decl
		if !spec.allows(d.Element) {
			out = append(out, diag.New(diag.SevError, diag.ShapeViolation, d.Location,
				"%s is a %s; role %s accepts %s", d.Name, d.Element, m.Role, elementList(spec.Elements)))
		}
		if spec.Exported && !d.Exported {
			out = append(out, diag.New(diag.SevError, diag.ShapeViolation, d.Location,
				"%s must be exported to play role %s", d.Name, m.Role))
		}
		if spec.Concrete {
			if where := wildcardIn(d); where != "" {
				out = append(out, diag.New(diag.SevError, diag.ShapeViolation, d.Location,
					"%s must use concrete types for role %s, %s is not", d.Name, m.Role, where))
			}
		}
	}
	return out
}

func elementList(kinds []decl.ElementKind) string {
	s := ""
	for i, k := range kinds {
		if i > 0 {
			s += ", "
		}
		s += k.String()
	}
	return s
}

// wildcardIn names the first non-concrete type a declaration mentions.
func wildcardIn(d *decl.Declaration) string {
	if d.Type.HasWildcard() {
		return fmt.Sprintf("type %s", d.Type)
	}
	groups := []struct {
		label  string
		fields []decl.Field
	}{{"parameter", d.Params}, {"result", d.Results}, {"field", d.Members}}
	for _, g := range groups {
		for i, f := range g.fields {
			if f.Type.HasWildcard() {
				name := f.Name
				if name == "" {
					name = fmt.Sprintf("#%d", i+1)
				}
				return fmt.Sprintf("%s %s (%s)", g.label, name, f.Type)
			}
		}
	}
	return ""
}

// selfReference reports whether a member's signature or fields mention the
// anchor type. The anchor declaration itself and method receivers are exempt.
func selfReference(u *Unit, d *decl.Declaration) bool {
	if d.QualifiedName() == u.Anchor {
		return false
	}
	for _, group := range [][]decl.Field{d.Params, d.Results, d.Members} {
		for _, f := range group {
			if f.Type.References(u.Anchor) {
				return true
			}
		}
	}
	return d.Type.References(u.Anchor)
}
