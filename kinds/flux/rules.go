package flux

import (
	"go/types"
	"path"
	"strings"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/diag"
	"github.com/teranos/minigen/engine"
)

var actionNotGeneric = engine.MemberRule("action-not-generic", "action", diag.ShapeViolation,
	func(_ *engine.Unit, d *decl.Declaration) string {
		if d.Type.HasWildcard() {
			return "action " + d.Name + " is generic; only concrete types can be dispatched"
		}
		return ""
	})

// containerState checks that the store has a state type and, when pure
// reducers exist, embeds flux.Store[S]: generated code for a pure reducer
// calls the promoted State and SetState methods.
var containerState = engine.RuleFunc{
	RuleName: "store-state",
	Fn: func(u *engine.Unit) []diag.Diagnostic {
		c := u.First("container")
		state, ok := stateType(c)
		if !ok {
			return []diag.Diagnostic{diag.New(diag.SevError, diag.ShapeViolation, c.Location,
				"store %s has no state type: embed flux.Store[S] or set state=<type>", c.Name)}
		}
		embedded, ok := embeddedState(c)
		if !ok {
			for _, d := range u.Role("reducer") {
				if len(d.Results) == 1 {
					return []diag.Diagnostic{diag.New(diag.SevError, diag.ShapeViolation, c.Location,
						"store %s has pure reducers but does not embed flux.Store[%s]", c.Name, state.Expr(c.Package.Path)).
						WithNote(d.Location, "pure reducer "+d.Name+" needs State and SetState")}
				}
			}
			return nil
		}
		if !sameType(state, embedded) {
			return []diag.Diagnostic{diag.New(diag.SevError, diag.ShapeViolation, c.Location,
				"store %s sets state=%s but embeds flux.Store[%s]", c.Name, state.String(), embedded.String())}
		}
		return nil
	},
}

var reducerOwner = engine.MemberRule("reducer-owner", "reducer", diag.ShapeViolation,
	func(u *engine.Unit, d *decl.Declaration) string {
		if d.Element == decl.ElementMethod && d.Enclosing != u.Anchor {
			return "reducer " + d.Name + " is a method of " + d.Enclosing + ", not of store " + u.Anchor
		}
		return ""
	})

var reducerPriority = engine.MemberRule("reducer-priority", "reducer", diag.ShapeViolation,
	func(_ *engine.Unit, d *decl.Declaration) string {
		if _, ok := d.Annotation.IntParam("priority", DefaultPriority); !ok {
			return "priority of reducer " + d.Name + " must be an integer, got " + d.Annotation.StringParam("priority", "")
		}
		return ""
	})

// reducerSignature checks the two accepted shapes: impure func(A) and
// pure func(S, A) S, where S is the store's state type.
var reducerSignature = engine.RuleFunc{
	RuleName: "reducer-signature",
	Fn: func(u *engine.Unit) []diag.Diagnostic {
		c := u.First("container")
		state, ok := stateType(c)
		if !ok {
			return nil
		}
		var out []diag.Diagnostic
		for _, d := range u.Role("reducer") {
			msg := signatureProblem(d, state)
			if msg == "" {
				continue
			}
			out = append(out, diag.New(diag.SevError, diag.ShapeViolation, d.Location, "%s", msg).
				WithNote(c.Location, "store "+c.Name+" holds "+state.String()))
		}
		return out
	},
}

func signatureProblem(d *decl.Declaration, state decl.TypeRef) string {
	switch len(d.Results) {
	case 0:
		if len(d.Params) != 1 {
			return "impure reducer " + d.Name + " must take exactly one action parameter"
		}
	case 1:
		if len(d.Params) != 2 {
			return "reducer " + d.Name + " must take (" + state.String() + ", action)"
		}
		if !sameType(d.Params[0].Type, state) {
			return "reducer " + d.Name + " takes " + d.Params[0].Type.String() + " as state, expected " + state.String()
		}
		if !sameType(d.Results[0].Type, state) {
			return "reducer " + d.Name + " returns " + d.Results[0].Type.String() + ", expected " + state.String()
		}
	default:
		return "reducer " + d.Name + " must return nothing or " + state.String()
	}
	action := d.Params[len(d.Params)-1].Type
	if action.HasWildcard() {
		return "action parameter of " + d.Name + " must be a concrete type, " + action.String() + " is not"
	}
	return ""
}

func sameType(a, b decl.TypeRef) bool {
	return a.String() == b.String()
}

// stateType resolves a store's state: the state= parameter, or S of an
// embedded flux.Store[S].
func stateType(c *decl.Declaration) (decl.TypeRef, bool) {
	if c == nil {
		return decl.TypeRef{}, false
	}
	if name := c.Annotation.StringParam("state", ""); name != "" {
		return parseTypeName(name, c.Package), true
	}
	return embeddedState(c)
}

// embeddedState returns S of a flux.Store[S] embedded in c, direct or promoted.
func embeddedState(c *decl.Declaration) (decl.TypeRef, bool) {
	if c == nil {
		return decl.TypeRef{}, false
	}
	for _, f := range c.Members {
		if f.Embedded && isRuntimeStore(f.Type) {
			return f.Type.Args[0], true
		}
	}
	for _, e := range c.Embeds {
		if isRuntimeStore(e.Type) {
			return e.Type.Args[0], true
		}
	}
	return decl.TypeRef{}, false
}

func isRuntimeStore(t decl.TypeRef) bool {
	return t.PkgPath == RuntimePath && t.Name == "Store" && len(t.Args) == 1
}

// parseTypeName reads a type written in an annotation: "State", "*State",
// "app.State" or "example.com/app.State". Predeclared names stay unqualified.
func parseTypeName(s string, pkg decl.Package) decl.TypeRef {
	var t decl.TypeRef
	if strings.HasPrefix(s, "*") {
		t.Pointer = true
		s = s[1:]
	}
	i := strings.LastIndex(s, ".")
	switch {
	case i < 0 && types.Universe.Lookup(s) != nil:
		t.Name = s
	case i < 0:
		t.PkgPath, t.PkgName, t.Name = pkg.Path, pkg.Name, s
	case s[:i] == pkg.Name || s[:i] == pkg.Path:
		t.PkgPath, t.PkgName, t.Name = pkg.Path, pkg.Name, s[i+1:]
	default:
		t.PkgPath, t.PkgName, t.Name = s[:i], path.Base(s[:i]), s[i+1:]
	}
	return t
}
