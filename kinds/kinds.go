// Package kinds loads kind tables: built-in kind sets and user tables
// written in TOML or YAML.
//
// A table declares kinds, their roles and the templates that render them:
//
//	[[kinds]]
//	name = "handlers"
//	key = "enclosing"
//
//	  [[kinds.roles]]
//	  name = "service"
//	  annotation = "service"
//	  required = true
//	  elements = ["type"]
//
//	  [[kinds.roles]]
//	  name = "handler"
//	  annotation = "handle"
//	  many = true
//	  elements = ["method"]
//	  exported = true
//
//	  [[kinds.outputs]]
//	  suffix = "go"
//	  file = "{{snake .Name}}_handlers_gen.go"
//	  template_file = "handlers.go.tmpl"
package kinds

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/kinds/flux"
)

// File is the top level of a kind table file.
type File struct {
	Kinds []KindSpec `toml:"kinds" yaml:"kinds"`
}

// KindSpec declares one kind.
type KindSpec struct {
	Name                string       `toml:"name" yaml:"name"`
	Key                 string       `toml:"key" yaml:"key"`
	Seal                string       `toml:"seal" yaml:"seal"`
	Reactive            bool         `toml:"reactive" yaml:"reactive"`
	ForbidSelfReference bool         `toml:"forbid_self_reference" yaml:"forbid_self_reference"`
	Roles               []RoleSpec   `toml:"roles" yaml:"roles"`
	Outputs             []OutputSpec `toml:"outputs" yaml:"outputs"`
}

// RoleSpec declares one role of a kind.
type RoleSpec struct {
	Name       string   `toml:"name" yaml:"name"`
	Annotation string   `toml:"annotation" yaml:"annotation"`
	Required   bool     `toml:"required" yaml:"required"`
	Many       bool     `toml:"many" yaml:"many"`
	Elements   []string `toml:"elements" yaml:"elements"`
	Exported   bool     `toml:"exported" yaml:"exported"`
	Concrete   bool     `toml:"concrete" yaml:"concrete"`
}

// OutputSpec declares one rendered file. Exactly one of Template and
// TemplateFile is set; TemplateFile is relative to the table file.
type OutputSpec struct {
	Suffix       string `toml:"suffix" yaml:"suffix"`
	File         string `toml:"file" yaml:"file"`
	Template     string `toml:"template" yaml:"template"`
	TemplateFile string `toml:"template_file" yaml:"template_file"`
}

// Build turns a spec into an engine kind. Template files resolve against baseDir.
func (s KindSpec) Build(baseDir string, read func(string) ([]byte, error)) (*engine.Kind, error) {
	key := s.Key
	if key == "" {
		key = engine.KeyEnclosing
	}
	rule, err := engine.ParseKeyRule(key)
	if err != nil {
		return nil, errors.Wrapf(err, "kind %q", s.Name)
	}

	k := &engine.Kind{
		Name:                s.Name,
		KeyRule:             rule,
		Seal:                engine.SealPolicy(s.Seal),
		Reactive:            s.Reactive,
		ForbidSelfReference: s.ForbidSelfReference,
	}
	if k.Seal == "" {
		k.Seal = engine.SealFinal
	}

	for _, r := range s.Roles {
		role := engine.RoleSpec{
			Name:       r.Name,
			Annotation: r.Annotation,
			Required:   r.Required,
			Many:       r.Many,
			Exported:   r.Exported,
			Concrete:   r.Concrete,
		}
		if role.Annotation == "" {
			role.Annotation = r.Name
		}
		for _, e := range r.Elements {
			ek, err := decl.ParseElementKind(e)
			if err != nil {
				return nil, errors.WithHint(
					errors.NewKindTableError("kind %q role %q: %v", s.Name, r.Name, err),
					"elements are type, field, method, func, const or var")
			}
			role.Elements = append(role.Elements, ek)
		}
		k.Roles = append(k.Roles, role)
	}

	if len(s.Outputs) == 0 {
		return nil, errors.NewKindTableError("kind %q has no outputs", s.Name)
	}
	tr := engine.NewTemplateRenderer()
	for _, o := range s.Outputs {
		body := o.Template
		switch {
		case o.Template != "" && o.TemplateFile != "":
			return nil, errors.NewKindTableError("kind %q output %q sets both template and template_file", s.Name, o.Suffix)
		case o.TemplateFile != "":
			p := o.TemplateFile
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			data, err := read(p)
			if err != nil {
				return nil, errors.Wrapf(err, "kind %q output %q", s.Name, o.Suffix)
			}
			body = string(data)
		case o.Template == "":
			return nil, errors.NewKindTableError("kind %q output %q has no template", s.Name, o.Suffix)
		}
		if o.Suffix == "" || o.File == "" {
			return nil, errors.NewKindTableError("kind %q: every output needs suffix and file", s.Name)
		}
		if err := tr.Add(o.Suffix, o.File, body); err != nil {
			return nil, errors.Wrapf(err, "kind %q", s.Name)
		}
	}
	k.Renderer = tr

	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// Builtins maps built-in kind set names to constructors.
var Builtins = map[string]func() []*engine.Kind{
	"flux": flux.Kinds,
}

// BuiltinNames returns the built-in set names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(Builtins))
	for n := range Builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Builtin returns the kinds of a built-in set.
func Builtin(name string) ([]*engine.Kind, error) {
	fn, ok := Builtins[strings.TrimSpace(name)]
	if !ok {
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrUnknownKind, "built-in kind set %q", name),
			"available sets: %s", strings.Join(BuiltinNames(), ", "))
	}
	return fn(), nil
}

// Table assembles a kind table from built-in sets and table files.
func Table(builtins []string, paths []string) (*engine.KindTable, error) {
	var all []*engine.Kind
	for _, name := range builtins {
		ks, err := Builtin(name)
		if err != nil {
			return nil, err
		}
		all = append(all, ks...)
	}
	for _, p := range paths {
		ks, err := Load(p)
		if err != nil {
			return nil, err
		}
		all = append(all, ks...)
	}
	if len(all) == 0 {
		return nil, errors.WithHint(
			errors.NewKindTableError("no kinds configured"),
			"set kinds.builtin (e.g. [\"flux\"]) or kinds.tables in minigen.toml")
	}
	return engine.NewKindTable(all...)
}
