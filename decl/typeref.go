package decl

import "strings"

// TypeRef is a host-neutral reference to a type.
type TypeRef struct {
	PkgPath string    `json:"pkg_path,omitempty"`
	PkgName string    `json:"pkg_name,omitempty"`
	Name    string    `json:"name"`
	Pointer bool      `json:"pointer,omitempty"`
	Slice   bool      `json:"slice,omitempty"`
	Args    []TypeRef `json:"args,omitempty"`

	// Wildcard marks any, interface{} and type parameters.
	Wildcard bool `json:"wildcard,omitempty"`
}

// IsZero reports whether the reference names nothing.
func (t TypeRef) IsZero() bool {
	return t.Name == "" && t.PkgPath == "" && !t.Wildcard
}

// QualifiedName returns "pkgpath.Name", or just Name for predeclared types.
// Pointer, slice and type arguments are not part of it.
func (t TypeRef) QualifiedName() string {
	if t.PkgPath == "" {
		return t.Name
	}
	return t.PkgPath + "." + t.Name
}

// Base returns the reference with pointer and slice stripped.
func (t TypeRef) Base() TypeRef {
	t.Pointer = false
	t.Slice = false
	return t
}

// HasWildcard reports whether the reference or any type argument is a wildcard.
func (t TypeRef) HasWildcard() bool {
	if t.Wildcard {
		return true
	}
	for _, a := range t.Args {
		if a.HasWildcard() {
			return true
		}
	}
	return false
}

// References reports whether the reference or any type argument names the
// qualified type.
func (t TypeRef) References(qualified string) bool {
	if t.Name != "" && t.QualifiedName() == qualified {
		return true
	}
	for _, a := range t.Args {
		if a.References(qualified) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (t TypeRef) Clone() TypeRef {
	if t.Args != nil {
		args := make([]TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.Clone()
		}
		t.Args = args
	}
	return t
}

// String renders the reference with its package path, e.g.
// "*example.com/app.Store[example.com/app.State]".
func (t TypeRef) String() string {
	return t.format(func(r TypeRef) string { return r.QualifiedName() })
}

// Expr renders the reference as Go source relative to the package at
// fromPath: types of that package are unqualified, others use PkgName.
func (t TypeRef) Expr(fromPath string) string {
	return t.format(func(r TypeRef) string {
		if r.PkgPath == "" || r.PkgPath == fromPath || r.PkgName == "" {
			return r.Name
		}
		return r.PkgName + "." + r.Name
	})
}

// Qualifier returns the identifier generated code uses for a package path,
// or "" to leave types of that package unqualified.
type Qualifier func(pkgPath string) string

// ExprQualified renders the reference as Go source, naming packages
// through q.
func (t TypeRef) ExprQualified(q Qualifier) string {
	return t.format(func(r TypeRef) string {
		if r.PkgPath == "" {
			return r.Name
		}
		if id := q(r.PkgPath); id != "" {
			return id + "." + r.Name
		}
		return r.Name
	})
}

// Imports lists the package paths Expr(fromPath) needs.
func (t TypeRef) Imports(fromPath string) []string {
	var out []string
	if t.PkgPath != "" && t.PkgPath != fromPath {
		out = append(out, t.PkgPath)
	}
	for _, a := range t.Args {
		out = append(out, a.Imports(fromPath)...)
	}
	return out
}

func (t TypeRef) format(name func(TypeRef) string) string {
	var b strings.Builder
	if t.Slice {
		b.WriteString("[]")
	}
	if t.Pointer {
		b.WriteByte('*')
	}
	if t.Name == "" && t.Wildcard {
		b.WriteString("any")
	} else {
		b.WriteString(name(t))
	}
	if len(t.Args) > 0 {
		b.WriteByte('[')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.format(name))
		}
		b.WriteByte(']')
	}
	return b.String()
}
