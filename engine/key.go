package engine

import (
	"strings"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/errors"
)

// Key identifies a generation unit: "<kind>:<anchor>".
type Key string

// MakeKey joins a kind name and an anchor.
func MakeKey(kind, anchor string) Key {
	return Key(kind + ":" + anchor)
}

// Kind returns the kind part of the key.
func (k Key) Kind() string {
	kind, _, _ := strings.Cut(string(k), ":")
	return kind
}

// Anchor returns the key without its kind prefix.
func (k Key) Anchor() string {
	_, anchor, _ := strings.Cut(string(k), ":")
	return anchor
}

func (k Key) String() string { return string(k) }

// Key rule names.
const (
	KeySelf      = "self"
	KeyEnclosing = "enclosing"
	KeyPackage   = "package"
	KeyGlobal    = "global"
	KeyParam     = "param"
)

// GlobalAnchor is the anchor shared by every declaration under the global rule.
const GlobalAnchor = "*"

// KeyRule derives a unit anchor from a declaration. Every rule is total:
// each declaration maps to exactly one anchor, independent of arrival order.
//
//	self       the declaration's own qualified name
//	enclosing  receiver or owning struct; top-level elements anchor on themselves
//	package    the declaring package path
//	global     one unit per kind
//	param:<p>  the type named by annotation parameter p, falling back to enclosing
type KeyRule struct {
	Name  string
	Param string
}

// ParseKeyRule parses "self", "enclosing", "package", "global" or "param:<name>".
func ParseKeyRule(s string) (KeyRule, error) {
	name, param, hasParam := strings.Cut(strings.TrimSpace(s), ":")
	r := KeyRule{Name: name, Param: param}
	if hasParam && name != KeyParam {
		return KeyRule{}, errors.NewKindTableError("key rule %q does not take a parameter", s)
	}
	if err := r.Validate(); err != nil {
		return KeyRule{}, err
	}
	return r, nil
}

// Validate checks the rule name and parameter.
func (r KeyRule) Validate() error {
	switch r.Name {
	case KeySelf, KeyEnclosing, KeyPackage, KeyGlobal:
		if r.Param != "" {
			return errors.NewKindTableError("key rule %s does not take a parameter", r.Name)
		}
		return nil
	case KeyParam:
		if r.Param == "" {
			return errors.NewKindTableError("key rule param needs a parameter name, e.g. param:store")
		}
		return nil
	}
	return errors.NewKindTableError("unknown key rule %q", r.Name)
}

func (r KeyRule) String() string {
	if r.Name == KeyParam {
		return KeyParam + ":" + r.Param
	}
	return r.Name
}

// Anchor applies the rule to a declaration.
func (r KeyRule) Anchor(d *decl.Declaration) string {
	switch r.Name {
	case KeySelf:
		return d.QualifiedName()
	case KeyPackage:
		return d.Package.Path
	case KeyGlobal:
		return GlobalAnchor
	case KeyParam:
		if ref := d.Annotation.StringParam(r.Param, ""); ref != "" {
			return qualify(ref, d.Package)
		}
	}
	return enclosingAnchor(d)
}

func enclosingAnchor(d *decl.Declaration) string {
	if d.Enclosing != "" {
		return d.Enclosing
	}
	return d.QualifiedName()
}

// qualify resolves a type name written in an annotation. Bare names and
// names prefixed with the declaring package's own name resolve into that
// package; anything else is taken as already qualified.
func qualify(ref string, pkg decl.Package) string {
	if !strings.Contains(ref, ".") {
		if pkg.Path == "" {
			return ref
		}
		return pkg.Path + "." + ref
	}
	if prefix, name, _ := strings.Cut(ref, "."); prefix == pkg.Name && !strings.Contains(name, ".") && pkg.Path != "" {
		return pkg.Path + "." + name
	}
	return ref
}
