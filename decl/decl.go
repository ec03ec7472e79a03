// Package decl defines the declaration model handed from a host to the
// generation engine: one annotated program element plus the structural
// metadata kinds need to validate and render it.
package decl

import (
	"fmt"
	"strings"

	"github.com/teranos/minigen/errors"
)

// ElementKind is the syntactic kind of an annotated element.
type ElementKind uint8

const (
	ElementUnknown ElementKind = iota
	ElementType
	ElementField
	ElementMethod
	ElementFunc
	ElementConst
	ElementVar
)

var elementNames = map[ElementKind]string{
	ElementUnknown: "unknown",
	ElementType:    "type",
	ElementField:   "field",
	ElementMethod:  "method",
	ElementFunc:    "func",
	ElementConst:   "const",
	ElementVar:     "var",
}

func (k ElementKind) String() string {
	if name, ok := elementNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseElementKind maps a lowercase element name back to its kind.
func ParseElementKind(s string) (ElementKind, error) {
	for k, name := range elementNames {
		if k != ElementUnknown && name == strings.ToLower(strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return ElementUnknown, errors.Newf("unknown element kind %q", s)
}

// Location is a source position used only for diagnostics.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// IsZero reports whether the location carries no position.
func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0 && l.Column == 0
}

func (l Location) String() string {
	if l.IsZero() {
		return "<unknown>"
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Package identifies the package an element was declared in.
type Package struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

// Field is a named, typed slot: a struct member, a parameter or a result.
type Field struct {
	Name     string  `json:"name,omitempty"`
	Type     TypeRef `json:"type"`
	Embedded bool    `json:"embedded,omitempty"`
}

// Embed is a type reachable through struct embedding. Depth 1 is a direct
// embed, depth 2 an embed of an embed, and so on.
type Embed struct {
	Type  TypeRef `json:"type"`
	Depth int     `json:"depth"`
}

// Declaration is one annotated program element.
//
// A host must not mutate a Declaration after handing it to the engine; the
// session keeps its own deep copy anyway.
type Declaration struct {
	// ID is the fully qualified identity. Elements carrying several
	// annotations produce one Declaration each, with IDs "element@annotation".
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Element ElementKind `json:"element"`
	Package Package     `json:"package"`

	// Enclosing is the qualified name of the receiver or owning struct,
	// empty for top-level elements.
	Enclosing string `json:"enclosing,omitempty"`

	Annotation Annotation `json:"annotation"`
	Exported   bool       `json:"exported"`

	// Type is the declared type of a type, field, const or var.
	Type    TypeRef `json:"type"`
	Params  []Field `json:"params,omitempty"`
	Results []Field `json:"results,omitempty"`
	Members []Field `json:"members,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`

	Location Location `json:"location"`
}

// QualifiedName returns the package-qualified element name, e.g.
// "example.com/app.Counter" or "example.com/app.Counter.OnIncrement".
func (d *Declaration) QualifiedName() string {
	if d.Enclosing != "" {
		return d.Enclosing + "." + d.Name
	}
	if d.Package.Path == "" {
		return d.Name
	}
	return d.Package.Path + "." + d.Name
}

// Clone returns a deep copy.
func (d *Declaration) Clone() *Declaration {
	if d == nil {
		return nil
	}
	c := *d
	c.Annotation = d.Annotation.Clone()
	c.Type = d.Type.Clone()
	c.Params = cloneFields(d.Params)
	c.Results = cloneFields(d.Results)
	c.Members = cloneFields(d.Members)
	if d.Embeds != nil {
		c.Embeds = make([]Embed, len(d.Embeds))
		for i, e := range d.Embeds {
			c.Embeds[i] = Embed{Type: e.Type.Clone(), Depth: e.Depth}
		}
	}
	return &c
}

// References reports whether any type mentioned by the declaration (its
// type, members, params, results or embeds) names the qualified type.
func (d *Declaration) References(qualified string) bool {
	if d.Type.References(qualified) {
		return true
	}
	for _, group := range [][]Field{d.Params, d.Results, d.Members} {
		for _, f := range group {
			if f.Type.References(qualified) {
				return true
			}
		}
	}
	for _, e := range d.Embeds {
		if e.Type.References(qualified) {
			return true
		}
	}
	return false
}

// Validate checks the fields every host must fill in.
func (d *Declaration) Validate() error {
	switch {
	case d == nil:
		return errors.New("nil declaration")
	case d.ID == "":
		return errors.Newf("declaration %q has no identity", d.Name)
	case d.Annotation.Name == "":
		return errors.Newf("declaration %s has no annotation", d.ID)
	case d.Element == ElementUnknown:
		return errors.Newf("declaration %s has no element kind", d.ID)
	}
	return nil
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = Field{Name: f.Name, Type: f.Type.Clone(), Embedded: f.Embedded}
	}
	return out
}
