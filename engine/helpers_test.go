package engine

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/diag"
)

const testPkg = "example.com/app"

// listRenderer writes one line per member so tests can see exactly what a
// unit rendered.
var listRenderer = RendererFunc(func(u *Unit, _ RenderOptions) ([]Output, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "unit %s\n", u.Key)
	for _, m := range u.Members() {
		fmt.Fprintf(&b, "%s %s\n", m.Role, m.Decl.ID)
	}
	return []Output{{Suffix: "list", File: "zz_" + strings.ToLower(u.Key.Kind()) + "_" + shortAnchor(u) + ".txt", Text: b.String()}}, nil
})

func shortAnchor(u *Unit) string {
	a := u.Anchor
	if i := strings.LastIndex(a, "."); i >= 0 {
		a = a[i+1:]
	}
	return strings.ToLower(a)
}

// widgetKind: one singular required "definition" (mini:widget on a type)
// plus any number of optional "member" declarations (mini:part) that find
// their widget through the receiver or an explicit of= parameter.
func widgetKind() *Kind {
	return &Kind{
		Name: "widget",
		Roles: []RoleSpec{
			{Name: "definition", Annotation: "widget", Required: true},
			{Name: "member", Annotation: "part", Many: true},
		},
		KeyRule:  KeyRule{Name: KeyParam, Param: "of"},
		Renderer: listRenderer,
	}
}

func newTable(t *testing.T, kinds ...*Kind) *KindTable {
	t.Helper()
	table, err := NewKindTable(kinds...)
	require.NoError(t, err)
	return table
}

func pkg() decl.Package {
	return decl.Package{Path: testPkg, Name: "app", Dir: "/src/app"}
}

func typeDecl(name, annotation string, line int) *decl.Declaration {
	return &decl.Declaration{
		ID:         testPkg + "." + name,
		Name:       name,
		Element:    decl.ElementType,
		Package:    pkg(),
		Annotation: decl.Annotation{Name: annotation},
		Exported:   true,
		Location:   decl.Location{File: "/src/app/" + strings.ToLower(name) + ".go", Line: line, Column: 6},
	}
}

func methodDecl(recv, name, annotation string, line int) *decl.Declaration {
	return &decl.Declaration{
		ID:         testPkg + "." + recv + "." + name,
		Name:       name,
		Element:    decl.ElementMethod,
		Package:    pkg(),
		Enclosing:  testPkg + "." + recv,
		Annotation: decl.Annotation{Name: annotation},
		Exported:   true,
		Location:   decl.Location{File: "/src/app/" + strings.ToLower(recv) + ".go", Line: line, Column: 1},
	}
}

// recordingSink keeps every artifact by ID and fails the test on conflicts.
type recordingSink struct {
	t         *testing.T
	artifacts map[string]Artifact
	writes    int
}

func newRecordingSink(t *testing.T) *recordingSink {
	return &recordingSink{t: t, artifacts: make(map[string]Artifact)}
}

func (s *recordingSink) Write(a Artifact) error {
	if prev, ok := s.artifacts[a.ID]; ok {
		require.Equal(s.t, prev.Text, a.Text, "artifact %s rewritten with different text", a.ID)
	}
	s.artifacts[a.ID] = a
	s.writes++
	return nil
}

func (s *recordingSink) ids() []string {
	out := make([]string, 0, len(s.artifacts))
	for id := range s.artifacts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type harness struct {
	engine *Engine
	bag    *diag.Bag
	sink   *recordingSink
}

func newHarness(t *testing.T, kinds ...*Kind) *harness {
	t.Helper()
	if len(kinds) == 0 {
		kinds = []*Kind{widgetKind()}
	}
	h := &harness{bag: diag.NewBag(0), sink: newRecordingSink(t)}
	h.engine = New(newTable(t, kinds...), Config{
		Reporter: diag.BagReporter{Bag: h.bag},
		Sink:     h.sink,
		Render:   RenderOptions{Header: DefaultHeader},
	})
	return h
}

func (h *harness) codes() []diag.Code {
	var out []diag.Code
	for _, d := range h.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func (h *harness) diagnostics(code diag.Code) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range h.bag.Items() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
