package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/minigen/decl"
)

const registryTemplate = `package {{.Package.Name}}

// {{.Name}}Parts lists the parts registered on {{.Name}}.
var {{.Name}}Parts = []string{
{{- range .Roles.member}}
	{{quote .Name}}, // priority {{param . "priority" "100"}}
{{- end}}
}
`

func templateKind(t *testing.T) *Kind {
	t.Helper()
	r := NewTemplateRenderer()
	require.NoError(t, r.Add("go", "{{snake .Name}}_parts_gen.go", registryTemplate))
	require.Equal(t, 1, r.Len())
	k := widgetKind()
	k.Renderer = r
	return k
}

func TestTemplateRendererEndToEnd(t *testing.T) {
	h := newHarness(t, templateKind(t))
	h.engine.render.Format = true

	urgent := methodDecl("K", "Urgent", "part", 5)
	urgent.Annotation.Params = map[string]decl.Value{"priority": decl.Int(1)}
	_, err := h.engine.ProcessRound([]*decl.Declaration{
		methodDecl("K", "Later", "part", 4),
		typeDecl("K", "widget", 1),
		urgent,
	}, true)
	require.NoError(t, err)
	require.Empty(t, h.bag.Items())

	art, ok := h.sink.artifacts[string(widgetK)+"#go"]
	require.True(t, ok)
	assert.Equal(t, "/src/app/k_parts_gen.go", art.Path)
	assert.Equal(t, DefaultHeader+`

package app

// KParts lists the parts registered on K.
var KParts = []string{
	"Later",  // priority 100
	"Urgent", // priority 1
}
`, art.Text)
}

func TestTemplateMissingKeyFails(t *testing.T) {
	r := NewTemplateRenderer()
	require.NoError(t, r.Add("txt", "x.txt", "{{.Roles.nonexistent}}"))
	u := NewUnit(widgetKind(), widgetK, Member{Role: "definition", Decl: typeDecl("K", "widget", 1)})

	_, err := r.Render(u, RenderOptions{})
	require.Error(t, err)
}

func TestTemplateOptionalRoleAlwaysPresent(t *testing.T) {
	r := NewTemplateRenderer()
	require.NoError(t, r.Add("txt", "{{.Kind}}.txt", "{{len .Roles.member}} parts"))
	u := NewUnit(widgetKind(), widgetK, Member{Role: "definition", Decl: typeDecl("K", "widget", 1)})

	out, err := r.Render(u, RenderOptions{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "widget.txt", out[0].File)
	assert.Equal(t, "0 parts", out[0].Text)
}

func TestTemplateRendererRejectsBadInput(t *testing.T) {
	r := NewTemplateRenderer()
	require.NoError(t, r.Add("a", "a.txt", "ok"))
	assert.Error(t, r.Add("a", "b.txt", "dup"))
	assert.Error(t, r.Add("b", "{{", "x"))
	assert.Error(t, r.Add("c", "c.txt", "{{.Nope"))
}

func TestRenderRejectsEscapingPaths(t *testing.T) {
	k := widgetKind()
	k.Renderer = RendererFunc(func(*Unit, RenderOptions) ([]Output, error) {
		return []Output{{Suffix: "x", File: "../outside.go", Text: "package x"}}, nil
	})
	u := NewUnit(k, widgetK, Member{Role: "definition", Decl: typeDecl("K", "widget", 1)})
	v, ok := Validate(u).Validated()
	require.True(t, ok)

	_, err := Render(v, RenderOptions{})
	require.Error(t, err)
}

func TestEscapes(t *testing.T) {
	tests := []struct {
		file string
		want bool
	}{
		{"zz_gen.go", false},
		{"..gen.go", false},
		{"sub/../zz_gen.go", false},
		{"..", true},
		{"../outside.go", true},
		{"sub/../../outside.go", true},
		{"/abs/zz_gen.go", true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, escapes(tt.file))
		})
	}
}
