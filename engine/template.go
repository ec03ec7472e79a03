package engine

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/internal/util"
)

// MemberView is the template-facing form of a member.
type MemberView struct {
	ID        string
	Name      string
	Role      string
	Element   string
	Enclosing string
	// Type is the member's type as Go source relative to the unit package.
	Type     string
	Exported bool
	Params   map[string]string
	Location string
}

// UnitView is the data handed to unit templates. Every role of the kind is
// present in Roles, empty when no member plays it.
type UnitView struct {
	Key     string
	Kind    string
	Anchor  string
	Name    string
	Package decl.Package
	Header  string
	Docs    bool
	Members []MemberView
	Roles   map[string][]MemberView
}

// NewUnitView builds the template data for a unit.
func NewUnitView(u *Unit, opts RenderOptions) UnitView {
	pkg := u.Package()
	v := UnitView{
		Key:     string(u.Key),
		Kind:    u.Kind.Name,
		Anchor:  u.Anchor,
		Name:    util.ShortName(u.Anchor),
		Package: pkg,
		Header:  opts.Header,
		Docs:    opts.Docs,
		Roles:   make(map[string][]MemberView, len(u.Kind.Roles)),
	}
	for _, r := range u.Kind.Roles {
		v.Roles[r.Name] = []MemberView{}
	}
	for _, m := range u.members {
		mv := MemberView{
			ID:        m.Decl.ID,
			Name:      m.Decl.Name,
			Role:      m.Role,
			Element:   m.Decl.Element.String(),
			Enclosing: m.Decl.Enclosing,
			Exported:  m.Decl.Exported,
			Params:    make(map[string]string, len(m.Decl.Annotation.Params)),
			Location:  m.Decl.Location.String(),
		}
		if !m.Decl.Type.IsZero() {
			mv.Type = m.Decl.Type.Expr(pkg.Path)
		}
		for name, val := range m.Decl.Annotation.Params {
			mv.Params[name] = val.String()
		}
		v.Members = append(v.Members, mv)
		v.Roles[m.Role] = append(v.Roles[m.Role], mv)
	}
	return v
}

// TemplateFuncs are the helpers available to unit templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"snake":  util.ToSnakeCase,
		"pascal": util.ToPascalCase,
		"camel":  util.ToCamelCase,
		"short":  util.ShortName,
		"lower":  strings.ToLower,
		"upper":  strings.ToUpper,
		"join":   strings.Join,
		"quote":  strconv.Quote,
		"param": func(m MemberView, name, def string) string {
			if v, ok := m.Params[name]; ok {
				return v
			}
			return def
		},
	}
}

type templateOutput struct {
	suffix string
	file   *template.Template
	body   *template.Template
}

// TemplateRenderer renders units through text/template. Each output has a
// template for its file name and one for its body; both run over a UnitView
// with missingkey=error.
type TemplateRenderer struct {
	outputs []templateOutput
}

// NewTemplateRenderer creates an empty renderer.
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{}
}

// Add parses one output. fileTmpl names the file, e.g. "{{snake .Name}}_gen.go".
func (r *TemplateRenderer) Add(suffix, fileTmpl, bodyTmpl string) error {
	for _, o := range r.outputs {
		if o.suffix == suffix {
			return errors.NewKindTableError("template output %q declared twice", suffix)
		}
	}
	file, err := template.New(suffix + ".file").Funcs(TemplateFuncs()).Option("missingkey=error").Parse(fileTmpl)
	if err != nil {
		return errors.Wrapf(err, "parse file name template for %s", suffix)
	}
	body, err := template.New(suffix).Funcs(TemplateFuncs()).Option("missingkey=error").Parse(bodyTmpl)
	if err != nil {
		return errors.Wrapf(err, "parse template for %s", suffix)
	}
	r.outputs = append(r.outputs, templateOutput{suffix: suffix, file: file, body: body})
	return nil
}

// Len returns the number of outputs.
func (r *TemplateRenderer) Len() int {
	return len(r.outputs)
}

func (r *TemplateRenderer) Render(u *Unit, opts RenderOptions) ([]Output, error) {
	view := NewUnitView(u, opts)
	out := make([]Output, 0, len(r.outputs))
	for _, o := range r.outputs {
		var name, body bytes.Buffer
		if err := o.file.Execute(&name, view); err != nil {
			return nil, errors.Wrapf(err, "file name for %s", o.suffix)
		}
		if err := o.body.Execute(&body, view); err != nil {
			return nil, errors.Wrapf(err, "template %s", o.suffix)
		}
		out = append(out, Output{
			Suffix: o.suffix,
			File:   strings.TrimSpace(name.String()),
			Text:   body.String(),
		})
	}
	return out, nil
}
