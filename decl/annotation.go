package decl

import (
	"sort"
	"strconv"
	"strings"
)

// ValueKind tags the literal held by a Value.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindInt
	KindBool
)

// Value is a typed annotation parameter literal.
type Value struct {
	Kind ValueKind `json:"kind"`
	Str  string    `json:"str,omitempty"`
	Int  int64     `json:"int,omitempty"`
	Bool bool      `json:"bool,omitempty"`
}

// String builds a string Value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Int builds an integer Value.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Bool builds a boolean Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// ParseValue infers the literal type of unquoted annotation text:
// integers and true/false are typed, everything else is a string.
func ParseValue(raw string) Value {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(i)
	}
	switch raw {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	return String(raw)
}

// String renders the value the way it would be written in a directive.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	}
	return v.Str
}

// Annotation is one annotation instance with its parameters.
type Annotation struct {
	Name   string           `json:"name"`
	Params map[string]Value `json:"params,omitempty"`
}

// Param returns the named parameter.
func (a Annotation) Param(name string) (Value, bool) {
	v, ok := a.Params[name]
	return v, ok
}

// StringParam returns the named parameter as text, or def when absent.
func (a Annotation) StringParam(name, def string) string {
	if v, ok := a.Params[name]; ok {
		return v.String()
	}
	return def
}

// IntParam returns the named integer parameter. ok is false when the
// parameter is present but not an integer.
func (a Annotation) IntParam(name string, def int64) (int64, bool) {
	v, present := a.Params[name]
	if !present {
		return def, true
	}
	if v.Kind != KindInt {
		return def, false
	}
	return v.Int, true
}

// BoolParam returns the named boolean parameter, or def when absent or not boolean.
func (a Annotation) BoolParam(name string, def bool) bool {
	if v, ok := a.Params[name]; ok && v.Kind == KindBool {
		return v.Bool
	}
	return def
}

// ParamNames returns parameter names in sorted order.
func (a Annotation) ParamNames() []string {
	names := make([]string, 0, len(a.Params))
	for name := range a.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy with its own parameter map.
func (a Annotation) Clone() Annotation {
	c := Annotation{Name: a.Name}
	if a.Params != nil {
		c.Params = make(map[string]Value, len(a.Params))
		for k, v := range a.Params {
			c.Params[k] = v
		}
	}
	return c
}

// String renders the annotation as a directive body, parameters sorted.
func (a Annotation) String() string {
	var b strings.Builder
	b.WriteString(a.Name)
	for _, name := range a.ParamNames() {
		v := a.Params[name]
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteByte('=')
		if v.Kind == KindString && (v.Str == "" || strings.ContainsAny(v.Str, " \t\"'")) {
			b.WriteString(strconv.Quote(v.Str))
		} else {
			b.WriteString(v.String())
		}
	}
	return b.String()
}
